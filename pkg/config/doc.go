/*
Package config loads and validates the synchronizer's YAML configuration.

The config package defines the single document that drives a run: which
network guests are expected to live in, how to reach the Proxmox API, and
which Cloudflare zone receives the records. Loading is strict (unknown keys
are rejected) and validation reports the first unusable setting, so a typo
fails the run before any API call is made.

# Architecture

	┌──────────────────── CONFIGURATION FLOW ────────────────────┐
	│                                                            │
	│  /etc/burrow/burrow.yaml (or --config)                     │
	│                   │                                        │
	│  ┌────────────────▼───────────────────────────┐            │
	│  │              Load(path)                    │            │
	│  │  1. Read file                              │            │
	│  │  2. Start from Default()                   │            │
	│  │  3. Strict YAML decode (KnownFields)       │            │
	│  │  4. normalize() node names                 │            │
	│  │  5. Validate()                             │            │
	│  └────────────────┬───────────────────────────┘            │
	│                   │                                        │
	│  ┌────────────────▼───────────────────────────┐            │
	│  │              *Config                       │            │
	│  │  ├── LogLevel, Concurrency, MetricsFile    │            │
	│  │  ├── Network    (prefix)                   │            │
	│  │  ├── Proxmox    (url, nodes, token, tls)   │            │
	│  │  └── Cloudflare (zone, subdomain, token)   │            │
	│  └────────────────────────────────────────────┘            │
	└────────────────────────────────────────────────────────────┘

# File Format

A complete configuration:

	log_level: info
	concurrency: 8
	metrics_file: /var/lib/node_exporter/textfile/burrow.prom

	network:
	  prefix: "10.6.0"

	proxmox:
	  url: https://pve.lab:8006
	  nodes: [pve1, pve2]
	  token_id: sync@pam!burrow
	  token_secret: 4be1a9c0-77aa-4b6e-8f02-1d2c3e4f5a6b
	  skip_tls_verify: true
	  timeout: 30s

	cloudflare:
	  zone: example.com
	  subdomain: lab
	  token: cf-api-token
	  timeout: 30s

Only the credentials, the zone, the node list and the network prefix are
required; everything else has a default.

# Defaults

	log_level:           info
	concurrency:         8
	metrics_file:        "" (export disabled)
	proxmox.timeout:     30s
	cloudflare.timeout:  30s
	skip_tls_verify:     false
	subdomain:           "" (records go directly under the zone)

# Duration Values

Timeouts use Go duration strings:

	timeout: 30s
	timeout: 1m30s
	timeout: 500ms

Bare numbers are rejected; the unit is mandatory.

# Validation

Validate() checks, in order:

  - log_level is one of debug, info, warn, error
  - concurrency is positive
  - network.prefix, proxmox.url, proxmox.token_id, proxmox.token_secret,
    cloudflare.zone and cloudflare.token are set
  - proxmox.nodes has at least one non-blank name

Node names are trimmed and blank entries dropped before the node-list
check, so "nodes: [pve1, '']" passes with one node.

# Usage

Loading in the command layer:

	cfg, err := config.Load(configPath)
	if err != nil {
		// message carries the path and the first problem found
		return err
	}

	client, err := proxmox.NewClient(proxmox.ClientConfig{
		BaseURL:       cfg.Proxmox.URL,
		TokenID:       cfg.Proxmox.TokenID,
		TokenSecret:   cfg.Proxmox.TokenSecret,
		SkipTLSVerify: cfg.Proxmox.SkipTLSVerify,
		Timeout:       time.Duration(cfg.Proxmox.Timeout),
	}, logger)

# Integration Points

This package integrates with:

  - cmd/burrow: loads the file named by --config, maps LogLevel onto
    the logger, Concurrency onto both fan-out phases
  - pkg/proxmox, pkg/cloudflare: client construction parameters
  - pkg/inventory: network prefix and node list
  - pkg/metrics: MetricsFile enables the textfile export

# Design Patterns

Defaults-Then-Overlay Pattern:
  - Decoding starts from Default(), so absent keys keep their defaults
    and an empty file is a valid (if unusable) document

Strict Decoding Pattern:
  - KnownFields(true) turns unknown keys into load errors, catching
    indentation mistakes and misspelled settings at startup

First-Error Validation Pattern:
  - Validate() returns the first problem, phrased with the YAML path
    ("missing required setting \"proxmox.token_id\"") so the fix is
    obvious without reading code

# Troubleshooting

"field X not found":
  - Cause: unknown or misspelled key, or a setting at the wrong level
  - Check: spelling and indentation against the sample above

"missing required setting":
  - Cause: a required key is absent or empty
  - Check: the named YAML path, including values from templating

"time: missing unit in duration":
  - Cause: a bare number in a timeout
  - Solution: add a unit, e.g. "30s"

Credentials in the file:
  - The file holds two API secrets; keep it mode 0600 and owned by the
    user the schedule runs as

# See Also

  - pkg/proxmox: consumes the Proxmox section
  - pkg/cloudflare: consumes the Cloudflare section
  - YAML specification: https://yaml.org/spec/1.2.2/
*/
package config
