package proxmox

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ClientConfig holds the settings needed to reach a cluster's API
type ClientConfig struct {
	// BaseURL is the API endpoint, e.g. https://pve.lab:8006
	BaseURL string

	// TokenID and TokenSecret form the API token credential
	TokenID     string
	TokenSecret string

	// SkipTLSVerify disables certificate verification for clusters
	// running self-signed certificates. Off by default.
	SkipTLSVerify bool

	// Timeout per request (default: 30s)
	Timeout time.Duration
}

// Client talks to the Proxmox VE HTTP API
type Client struct {
	baseURL    string
	authHeader string
	httpc      *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Proxmox API client.
// Required settings: BaseURL, TokenID, TokenSecret.
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("proxmox: missing required setting BaseURL")
	}
	if cfg.TokenID == "" {
		return nil, errors.New("proxmox: missing required setting TokenID")
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("proxmox: missing required setting TokenSecret")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: fmt.Sprintf("PVEAPIToken=%s=%s", cfg.TokenID, cfg.TokenSecret),
		httpc: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: logger,
	}, nil
}

// get executes an authenticated GET against the API and decodes the
// JSON body into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("proxmox: build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("proxmox: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proxmox: GET %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("proxmox: decode %s response: %w", path, err)
	}
	return nil
}

// Guest is one guest instance as reported by a cluster node
type Guest struct {
	VMID     int    `json:"vmid"`
	Name     string `json:"name"`
	Template int    `json:"template"`
	Status   string `json:"status"`
}

// IsTemplate reports whether the guest is a provisioning template
// rather than a runnable machine
func (g Guest) IsTemplate() bool {
	return g.Template == 1
}

// ListGuests returns every guest instance known to the given node.
// Templates are included; callers filter them.
func (c *Client) ListGuests(ctx context.Context, node string) ([]Guest, error) {
	var env struct {
		Data []Guest `json:"data"`
	}

	path := fmt.Sprintf("/api2/json/nodes/%s/qemu", url.PathEscape(node))
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("node", node).
		Int("guests", len(env.Data)).
		Msg("listed guests")
	return env.Data, nil
}

// NetworkInterface is one interface reported by the in-guest agent
type NetworkInterface struct {
	Name        string      `json:"name"`
	IPAddresses []IPAddress `json:"ip-addresses"`
}

// IPAddress is one address bound to a guest interface
type IPAddress struct {
	Address string `json:"ip-address"`
	Type    string `json:"ip-address-type"`
	Prefix  int    `json:"prefix"`
}

// AgentError is a structured error returned by the in-guest agent,
// e.g. when the agent is installed but not running
type AgentError struct {
	Class string `json:"class"`
	Desc  string `json:"desc"`
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("guest agent error: %s (%s)", e.Desc, e.Class)
}

// NetworkInterfaces asks the in-guest agent for the guest's network
// interfaces. A structured agent failure comes back as *AgentError so
// callers can tell "agent unavailable" apart from transport errors.
func (c *Client) NetworkInterfaces(ctx context.Context, node string, vmid int) ([]NetworkInterface, error) {
	var env struct {
		Data struct {
			Result json.RawMessage `json:"result"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/api2/json/nodes/%s/qemu/%d/agent/network-get-interfaces", url.PathEscape(node), vmid)
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(env.Data.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, nil
	}

	// The agent answers with either an interface list or an object
	// carrying an error member
	if result[0] == '{' {
		var wrapped struct {
			Error *AgentError `json:"error"`
		}
		if err := json.Unmarshal(result, &wrapped); err != nil {
			return nil, fmt.Errorf("proxmox: decode agent response: %w", err)
		}
		if wrapped.Error != nil {
			return nil, wrapped.Error
		}
		return nil, errors.New("proxmox: unexpected agent response shape")
	}

	var ifaces []NetworkInterface
	if err := json.Unmarshal(result, &ifaces); err != nil {
		return nil, fmt.Errorf("proxmox: decode agent interfaces: %w", err)
	}

	c.logger.Debug().
		Str("node", node).
		Int("vmid", vmid).
		Int("interfaces", len(ifaces)).
		Msg("fetched guest interfaces")
	return ifaces, nil
}
