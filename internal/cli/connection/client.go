// Package connection provides the API client for peermeet-cli.
package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a peermeet server.
type Client struct {
	baseURL string
	http    *http.Client
	tlsCfg  *tls.Config
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithTLSConfig sets the TLS config, typically carrying extra root CAs.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		c.tlsCfg = cfg
	}
}

// NewClient creates a client for the given server. A bare host:port is
// treated as http.
func NewClient(server string, opts ...Option) *Client {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tlsCfg != nil {
		c.http.Transport = &http.Transport{TLSClientConfig: c.tlsCfg}
	}

	return c
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Peer is one group member as the server reports it.
type Peer struct {
	PeerID        string            `json:"peer_id"`
	Name          string            `json:"name"`
	Endpoint      string            `json:"endpoint,omitempty"`
	SourceAddress string            `json:"source_address,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Age           int64             `json:"age"`
}

// RegisterRequest is the payload for registering a peer.
type RegisterRequest struct {
	Name       string            `json:"name"`
	Endpoint   string            `json:"endpoint,omitempty"`
	TTLSeconds *int64            `json:"ttl_seconds,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	PeerID     string            `json:"peer_id,omitempty"`
}

// RegisterResult is the server's answer to a registration.
type RegisterResult struct {
	PeerID        string `json:"peer_id"`
	TTLSeconds    int64  `json:"ttl_seconds"`
	SourceAddress string `json:"source_address"`
}

// Status summarizes the server's registry and subscriptions.
type Status struct {
	Groups           int `json:"groups"`
	Observers        int `json:"observers"`
	SubscriptionKeys int `json:"subscription_keys"`
}

// SnapshotInfo describes one snapshot file.
type SnapshotInfo struct {
	ID         string `json:"id"`
	GroupCount int    `json:"group_count"`
	CreatedAt  int64  `json:"created_at"`
	Size       int64  `json:"size"`
	Path       string `json:"path"`
	Checksum   string `json:"checksum"`
}

// Register registers a peer in a group.
func (c *Client) Register(ctx context.Context, groupKey string, req *RegisterRequest) (*RegisterResult, error) {
	var out RegisterResult
	err := c.post(ctx, "/v1/groups/"+url.PathEscape(groupKey)+"/peers", req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Discover lists the live members of a group.
func (c *Client) Discover(ctx context.Context, groupKey string) ([]Peer, error) {
	var out struct {
		Peers []Peer `json:"peers"`
		Count int    `json:"count"`
	}
	err := c.get(ctx, "/v1/groups/"+url.PathEscape(groupKey)+"/peers", &out)
	if err != nil {
		return nil, err
	}
	return out.Peers, nil
}

// Heartbeat refreshes a peer's registration.
func (c *Client) Heartbeat(ctx context.Context, groupKey, peerID string) error {
	path := "/v1/groups/" + url.PathEscape(groupKey) + "/peers/" + url.PathEscape(peerID) + "/heartbeat"
	return c.post(ctx, path, nil, nil)
}

// Unsubscribe removes a peer from a group.
func (c *Client) Unsubscribe(ctx context.Context, groupKey, peerID string) error {
	path := "/v1/groups/" + url.PathEscape(groupKey) + "/peers/" + url.PathEscape(peerID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Status fetches the admin status summary.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.get(ctx, "/admin/v1/status/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// CreateSnapshot asks the server to write a snapshot now.
func (c *Client) CreateSnapshot(ctx context.Context) (*SnapshotInfo, error) {
	var out SnapshotInfo
	if err := c.post(ctx, "/admin/v1/snapshots", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSnapshots lists the server's snapshot files, oldest first.
func (c *Client) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	var out struct {
		Snapshots []SnapshotInfo `json:"snapshots"`
	}
	if err := c.get(ctx, "/admin/v1/snapshots", &out); err != nil {
		return nil, err
	}
	return out.Snapshots, nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	return c.do(ctx, http.MethodGet, path, nil, target)
}

func (c *Client) post(ctx context.Context, path string, body, target any) error {
	return c.do(ctx, http.MethodPost, path, body, target)
}

// do performs a request and unwraps the server's response envelope
// into target.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "peermeet-cli/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}

	if resp.StatusCode >= 400 {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
			return fmt.Errorf("[%s] %s", envelope.Code, envelope.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
