/*
Package proxmox provides an HTTP client for the Proxmox VE control-plane API.

The proxmox package covers the two read-only endpoints a synchronization run
needs: listing the guests of a cluster node, and asking a guest's QEMU agent
for its network interfaces. Authentication uses Proxmox API tokens, and
certificate verification can be switched off for clusters running self-signed
certificates.

# Architecture

	┌───────────────────── PROXMOX CLIENT ─────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │              Client                        │           │
	│  │  - Base URL (https://pve.lab:8006)         │           │
	│  │  - PVEAPIToken auth header                 │           │
	│  │  - Per-request timeout                     │           │
	│  │  - Optional TLS verification skip          │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │           ListGuests(node)                 │           │
	│  │  GET /api2/json/nodes/{node}/qemu          │           │
	│  │  → []Guest (vmid, name, template flag)     │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │      NetworkInterfaces(node, vmid)         │           │
	│  │  GET .../qemu/{vmid}/agent/                │           │
	│  │      network-get-interfaces                │           │
	│  │  → []NetworkInterface                      │           │
	│  │  → *AgentError (agent unavailable)         │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Core Components

Client:
  - Thin wrapper over net/http with a shared auth header
  - Every response body is the {"data": ...} envelope
  - Context-aware requests for cancellation

Guest:
  - One guest instance as a node reports it
  - IsTemplate() distinguishes provisioning templates from machines

NetworkInterface / IPAddress:
  - The agent's view of a guest's interfaces
  - Address strings are passed through verbatim

AgentError:
  - Structured failure from the in-guest agent
  - Lets callers tell "agent not running" apart from transport errors

# API Endpoints

Guest listing:

	GET {base}/api2/json/nodes/{node}/qemu
	Authorization: PVEAPIToken={token_id}={secret}

	{"data": [
	  {"vmid": 101, "name": "web1", "template": 0, "status": "running"},
	  {"vmid": 9000, "name": "base-image", "template": 1, "status": "stopped"}
	]}

Agent interface query:

	GET {base}/api2/json/nodes/{node}/qemu/{vmid}/agent/network-get-interfaces

	{"data": {"result": [
	  {"name": "eth0", "ip-addresses": [
	    {"ip-address": "10.6.0.42", "ip-address-type": "ipv4", "prefix": 24}
	  ]}
	]}}

# Agent Responses

The agent endpoint answers with one of two shapes inside data.result:
an array of interfaces when the agent responded, or an object carrying
an error member when it could not:

	{"data": {"result": {"error": {
	  "class": "Unrouteable",
	  "desc": "No QEMU guest agent configured"
	}}}}

NetworkInterfaces turns the second shape into *AgentError so callers can
branch with errors.As. A null or absent result decodes to an empty
interface list.

# Usage

Creating a client:

	client, err := proxmox.NewClient(proxmox.ClientConfig{
		BaseURL:       "https://pve.lab:8006",
		TokenID:       "sync@pam!burrow",
		TokenSecret:   secret,
		SkipTLSVerify: true, // self-signed cluster certificate
	}, log.WithComponent("proxmox"))
	if err != nil {
		return err
	}

Listing guests:

	guests, err := client.ListGuests(ctx, "pve1")
	if err != nil {
		return err
	}
	for _, g := range guests {
		if g.IsTemplate() {
			continue
		}
		// resolve g's address
	}

Querying the agent:

	ifaces, err := client.NetworkInterfaces(ctx, "pve1", 101)
	if err != nil {
		var agentErr *proxmox.AgentError
		if errors.As(err, &agentErr) {
			// agent unavailable: fall back to a predicted address
		}
	}

# TLS Verification

Proxmox clusters commonly run self-signed certificates. SkipTLSVerify
clones http.DefaultTransport and disables certificate verification on
the clone, leaving the default transport untouched. The toggle defaults
to off and must be set explicitly in configuration; it is an accepted
risk for lab clusters, not a recommendation.

# Integration Points

This package integrates with:

  - pkg/inventory: lists guests and queries agents during resolution
  - pkg/config: ProxmoxConfig supplies the client settings
  - pkg/log: component logger for per-call debug detail

# Design Patterns

Envelope Decoding Pattern:
  - Every endpoint wraps its payload in {"data": ...}
  - The internal get helper decodes straight into caller-shaped structs

Typed Error Pattern:
  - Structured agent failures become *AgentError values
  - Transport and status failures stay plain wrapped errors
  - Callers branch with errors.As instead of string matching

Read-Only Client Pattern:
  - The synchronizer never mutates hypervisor state
  - Only GET endpoints are implemented

# Performance Characteristics

Request Overhead:
  - One HTTP round trip per call, no caching
  - JSON decoding into fixed structs, no reflection surprises
  - Guest listings are small (tens of guests per node)

Timeouts:
  - Per-request timeout via http.Client (default 30s)
  - No retries; a failed call is reported to the caller

# Troubleshooting

401 Unauthorized:
  - Symptom: GET returns status 401
  - Check: token id format is user@realm!tokenname
  - Check: token has VM.Audit privilege on the queried nodes

Certificate Errors:
  - Symptom: "x509: certificate signed by unknown authority"
  - Cause: cluster runs a self-signed certificate
  - Solution: set skip_tls_verify: true in the proxmox config block

Agent Errors on Every Guest:
  - Symptom: every NetworkInterfaces call returns *AgentError
  - Cause: QEMU guest agent not installed or not enabled
  - Check: "agent: 1" in the guest config, qemu-guest-agent in the guest

# See Also

  - Proxmox VE API: https://pve.proxmox.com/pve-docs/api-viewer/
  - QEMU guest agent: https://pve.proxmox.com/wiki/Qemu-guest-agent
  - API tokens: https://pve.proxmox.com/pve-docs/pveum.1.html
*/
package proxmox
