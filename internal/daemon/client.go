package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/rupee/internal/model"
)

const (
	requestTimeout = 2 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrDaemonNotFound is returned when the daemon reports an unknown notification id.
var ErrDaemonNotFound = errors.New("daemon: not found")

// Client talks to a running daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the daemon listening on addr (host:port or a URL).
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/v1/status", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Notifications fetches the notification log and the unread count.
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) (int, []model.Notification, error) {
	path := "/v1/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var resp notificationsResponse
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return 0, nil, err
	}
	return resp.Unread, resp.Notifications, nil
}

// MarkRead marks one notification read by id or unique prefix.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/notifications/"+url.PathEscape(id)+"/read", nil)
}

// MarkAllRead marks every notification read and returns how many changed.
func (c *Client) MarkAllRead(ctx context.Context) (int, error) {
	var resp map[string]int
	if err := c.do(ctx, http.MethodPost, "/v1/notifications/read-all", &resp); err != nil {
		return 0, err
	}
	return resp["marked"], nil
}

// do performs a request and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rupee-cli")

	//nolint:gosec // URL is built from the configured local daemon address
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("daemon: reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrDaemonNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("daemon: %s (HTTP %d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return nil
}
