// Package poller implements the dashboard side of the API: a polling client
// that keeps a display eventually consistent with server state. Every cycle
// re-fetches the recent-history slots, the daily total, and the per-material
// counts as independent requests, so one failing section never blanks the
// whole view.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dpontes/smartbin/backend/internal/domain"
)

// defaultTimeout bounds every fetch. An expired request takes the same
// degradation path as an HTTP error.
const defaultTimeout = 4 * time.Second

// Client is a thin HTTP client for the smart bin API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for the API at baseURL (scheme + host, no
// trailing slash). A non-positive timeout falls back to the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Recent fetches the n newest events, newest first.
func (c *Client) Recent(ctx context.Context, n int) ([]domain.Collection, error) {
	var out []domain.Collection
	err := c.getJSON(ctx, fmt.Sprintf("/api/coletas?limit=%d", n), &out)
	return out, err
}

// TodayCount fetches the number of events recorded today.
func (c *Client) TodayCount(ctx context.Context) (int, error) {
	var out struct {
		TotalItens int `json:"total_itens"`
	}
	err := c.getJSON(ctx, "/api/coletas/today/count", &out)
	return out.TotalItens, err
}

// MaterialCount fetches the all-time total for a single material.
// A material with no events yields zero.
func (c *Client) MaterialCount(ctx context.Context, tipo domain.Material) (int, error) {
	var out []domain.MaterialCount
	path := "/api/estatisticas?tipo=" + url.QueryEscape(string(tipo))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

// Delete removes an event by id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/coleta/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("poller.Client.Delete: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("poller.Client.Delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poller.Client.Delete: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("poller.Client: build request %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("poller.Client: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poller.Client: fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("poller.Client: decode %s: %w", path, err)
	}
	return nil
}
