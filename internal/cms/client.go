package cms

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

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

const defaultTimeout = 5 * time.Second

// ErrUnavailable is returned when the remote content API cannot produce a catalog.
var ErrUnavailable = errors.New("cms: content api unavailable")

// Client reads the catalog from a remote content API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient returns a Client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiEnvelope is the {status, results, data} shape served by the content API.
type apiEnvelope struct {
	Status  string     `json:"status"`
	Results int        `json:"results"`
	Data    []rawEntry `json:"data"`
}

type rawEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Popularity  int    `json:"popularity"`
	UpdatedAt   string `json:"updatedAt"`
	LastUpdated string `json:"lastUpdated"`
}

func (r rawEntry) entry() domain.CatalogEntry {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(r.ID)
	}
	return domain.CatalogEntry{
		Name:       name,
		Category:   strings.TrimSpace(r.Category),
		Popularity: r.Popularity,
		UpdatedAt:  parseTimestamp(firstNonEmpty(r.UpdatedAt, r.LastUpdated)),
	}
}

// parseTimestamp accepts RFC 3339 and bare YYYY-MM-DD dates. Anything else is treated as absent.
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ListCheatsheets fetches GET {baseURL}/cheatsheets. Both a bare JSON array and the
// {status, data} envelope are accepted.
func (c *Client) ListCheatsheets(ctx context.Context) ([]domain.CatalogEntry, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("%w: base url not configured", ErrUnavailable)
	}

	endpoint, err := url.JoinPath(c.baseURL, "cheatsheets")
	if err != nil {
		return nil, fmt.Errorf("cms: join path: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("cms: read body: %w", err)
	}
	return decodeCatalog(body)
}

func decodeCatalog(body []byte) ([]domain.CatalogEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("cms: empty catalog response")
	}
	var raws []rawEntry
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("cms: decode catalog: %w", err)
		}
	} else {
		var envelope apiEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("cms: decode catalog: %w", err)
		}
		if envelope.Status != "" && envelope.Status != "success" {
			return nil, fmt.Errorf("%w: status %q", ErrUnavailable, envelope.Status)
		}
		raws = envelope.Data
	}

	entries := make([]domain.CatalogEntry, 0, len(raws))
	for _, raw := range raws {
		entries = append(entries, raw.entry())
	}
	return entries, nil
}
