package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public v4 API endpoint
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// ErrZoneNotFound is returned by ZoneID when the account holds no zone
// with the requested name
var ErrZoneNotFound = errors.New("zone not found")

// ClientConfig holds the settings needed to reach the DNS API
type ClientConfig struct {
	// BaseURL overrides the API endpoint; empty means DefaultBaseURL
	BaseURL string

	// Token is a scoped API token with DNS edit permission
	Token string

	// Timeout per request (default: 30s)
	Timeout time.Duration
}

// Client talks to the Cloudflare v4 HTTP API
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  zerolog.Logger
}

// NewClient creates a Cloudflare API client.
// Required settings: Token.
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("cloudflare: missing required setting Token")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// envelope is the response wrapper every v4 endpoint uses
type envelope struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e apiError) String() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func joinErrors(errs []apiError) string {
	if len(errs) == 0 {
		return "no error detail"
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// do executes a request, unwraps the v4 envelope and decodes the
// result into out when non-nil
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cloudflare: encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("cloudflare: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("cloudflare: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("cloudflare: %s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return fmt.Errorf("cloudflare: %s %s failed (status %d): %s", method, path, resp.StatusCode, joinErrors(env.Errors))
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("cloudflare: %s %s: decode result: %w", method, path, err)
		}
	}
	return nil
}

// ZoneID resolves a zone name to its identifier. Returns
// ErrZoneNotFound when the account holds no such zone.
func (c *Client) ZoneID(ctx context.Context, name string) (string, error) {
	var zones []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	path := "/zones?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &zones); err != nil {
		return "", err
	}
	if len(zones) == 0 {
		return "", fmt.Errorf("%w: %s", ErrZoneNotFound, name)
	}

	c.logger.Debug().
		Str("zone", name).
		Str("zone_id", zones[0].ID).
		Msg("resolved zone")
	return zones[0].ID, nil
}

// Record is an A record as the API reports and accepts it
type Record struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority int    `json:"priority"`
	Proxied  bool   `json:"proxied"`
}

// FindRecord looks up the A record with the given fully qualified name.
// Returns (nil, nil) when no such record exists.
func (c *Client) FindRecord(ctx context.Context, zoneID, fqdn string) (*Record, error) {
	var records []Record

	query := url.Values{"name": {fqdn}, "type": {"A"}}
	path := fmt.Sprintf("/zones/%s/dns_records?%s", zoneID, query.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// CreateRecord adds a new record to the zone
func (c *Client) CreateRecord(ctx context.Context, zoneID string, rec Record) error {
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	if err := c.do(ctx, http.MethodPost, path, rec, nil); err != nil {
		return err
	}

	c.logger.Debug().
		Str("name", rec.Name).
		Str("content", rec.Content).
		Msg("created record")
	return nil
}

// UpdateRecord replaces the record identified by recordID
func (c *Client) UpdateRecord(ctx context.Context, zoneID, recordID string, rec Record) error {
	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	if err := c.do(ctx, http.MethodPut, path, rec, nil); err != nil {
		return err
	}

	c.logger.Debug().
		Str("name", rec.Name).
		Str("content", rec.Content).
		Str("record_id", recordID).
		Msg("updated record")
	return nil
}
