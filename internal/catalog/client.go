package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultFormats are the lendable format categories a search is limited to.
var DefaultFormats = []string{
	"ebook-overdrive",
	"ebook-media-do",
	"ebook-overdrive-provisional",
	"audiobook-overdrive",
	"audiobook-overdrive-provisional",
	"magazine-overdrive",
}

// Config locates the catalog search service and identifies this client to it.
type Config struct {
	BaseURL   string
	LibraryID string
	ClientID  string
	Formats   []string
	PerPage   int
	Timeout   time.Duration
}

// Client queries a library's OverDrive (Libby) media search.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new catalog client
func NewClient(cfg Config) *Client {
	if len(cfg.Formats) == 0 {
		cfg.Formats = DefaultFormats
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 24
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SearchURL builds the media search URL for a title query. Only the first
// page is ever requested.
func (c *Client) SearchURL(query string) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", strings.Join(c.cfg.Formats, ","))
	params.Set("perPage", strconv.Itoa(c.cfg.PerPage))
	params.Set("page", "1")
	params.Set("x-client-id", c.cfg.ClientID)

	return fmt.Sprintf("%s/v2/libraries/%s/media?%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.LibraryID), params.Encode())
}

// Fetch runs a search and returns the raw items, or the reason it failed.
func (c *Client) Fetch(ctx context.Context, query string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var searchResp struct {
		Items []any `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	records := make([]Record, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		// Non-object items carry nothing we can match on
		if obj, ok := item.(map[string]any); ok {
			records = append(records, Record(obj))
		}
	}

	return records, nil
}

// Search runs a search and never fails: any error is logged and reported
// as no results.
func (c *Client) Search(ctx context.Context, query string) []Record {
	records, err := c.Fetch(ctx, query)
	if err != nil {
		slog.Warn("Catalog search failed", "query", query, "err", err)
		return []Record{}
	}
	slog.Debug("Catalog search complete", "query", query, "items", len(records))
	return records
}
