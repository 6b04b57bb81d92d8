package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the sync job looks for its configuration
	// unless --config points elsewhere
	DefaultPath = "/etc/burrow/burrow.yaml"

	// DefaultConcurrency bounds how many guest or record operations
	// may have an outstanding network call at once
	DefaultConcurrency = 8

	// DefaultRequestTimeout applies to every API request unless
	// overridden per collaborator
	DefaultRequestTimeout = 30 * time.Second
)

// Duration wraps time.Duration so configs can use forms like "30s" or "1m"
type Duration time.Duration

// UnmarshalYAML parses a Go duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

// Config holds everything one synchronization run needs
type Config struct {
	// LogLevel is one of debug, info, warn, error (default: info)
	LogLevel string `yaml:"log_level"`

	// Concurrency caps in-flight calls per fan-out phase (default: 8)
	Concurrency int `yaml:"concurrency"`

	// MetricsFile, when set, receives Prometheus run metrics in the
	// node_exporter textfile collector format
	MetricsFile string `yaml:"metrics_file"`

	Network    NetworkConfig    `yaml:"network"`
	Proxmox    ProxmoxConfig    `yaml:"proxmox"`
	Cloudflare CloudflareConfig `yaml:"cloudflare"`
}

// NetworkConfig describes the address pool guests are expected to live in
type NetworkConfig struct {
	// Prefix is the network prefix substring an agent-reported address
	// must contain to be accepted, and the stem for predicted
	// addresses (e.g. "10.6.0")
	Prefix string `yaml:"prefix"`
}

// ProxmoxConfig describes the hypervisor control plane
type ProxmoxConfig struct {
	// URL is the API base, e.g. https://pve.lab:8006
	URL string `yaml:"url"`

	// Nodes are the cluster node names to list guests from
	Nodes []string `yaml:"nodes"`

	// TokenID and TokenSecret form the API token credential,
	// e.g. sync@pam!burrow
	TokenID     string `yaml:"token_id"`
	TokenSecret string `yaml:"token_secret"`

	// SkipTLSVerify disables certificate verification. Clusters with
	// self-signed certificates need this; it stays off unless asked for.
	SkipTLSVerify bool `yaml:"skip_tls_verify"`

	// Timeout per API request (default: 30s)
	Timeout Duration `yaml:"timeout"`
}

// CloudflareConfig describes the DNS provider
type CloudflareConfig struct {
	// Zone is the DNS zone records are managed in, e.g. example.com
	Zone string `yaml:"zone"`

	// Subdomain, when set, is inserted between the guest name and the
	// zone: {guest}.{subdomain}.{zone}
	Subdomain string `yaml:"subdomain"`

	// Token is the API bearer token
	Token string `yaml:"token"`

	// Timeout per API request (default: 30s)
	Timeout Duration `yaml:"timeout"`
}

// Default returns a config with every optional setting at its default
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Concurrency: DefaultConcurrency,
		Proxmox: ProxmoxConfig{
			Timeout: Duration(DefaultRequestTimeout),
		},
		Cloudflare: CloudflareConfig{
			Timeout: Duration(DefaultRequestTimeout),
		},
	}
}

// Load reads, parses and validates the config file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}

	return cfg, nil
}

// normalize trims node names and drops blank entries
func (c *Config) normalize() {
	nodes := make([]string, 0, len(c.Proxmox.Nodes))
	for _, node := range c.Proxmox.Nodes {
		if trimmed := strings.TrimSpace(node); trimmed != "" {
			nodes = append(nodes, trimmed)
		}
	}
	c.Proxmox.Nodes = nodes
}

// Validate reports the first missing or unusable setting
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}

	required := []struct {
		name  string
		value string
	}{
		{"network.prefix", c.Network.Prefix},
		{"proxmox.url", c.Proxmox.URL},
		{"proxmox.token_id", c.Proxmox.TokenID},
		{"proxmox.token_secret", c.Proxmox.TokenSecret},
		{"cloudflare.zone", c.Cloudflare.Zone},
		{"cloudflare.token", c.Cloudflare.Token},
	}
	for _, setting := range required {
		if setting.value == "" {
			return fmt.Errorf("missing required setting %q", setting.name)
		}
	}

	if len(c.Proxmox.Nodes) == 0 {
		return errors.New("proxmox.nodes needs at least one node name")
	}

	return nil
}
