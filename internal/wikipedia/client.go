package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIURL  = "https://en.wikipedia.org/w/api.php"
	defaultRESTURL = "https://en.wikipedia.org/api/rest_v1"
)

// Client queries the Wikipedia API for search results and article summaries.
type Client struct {
	httpClient *http.Client
	userAgent  string
	apiURL     string
	restURL    string
}

// SearchResult represents a single Wikipedia search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	PageID  int    `json:"pageid"`
}

// Summary is the lead section of an article.
type Summary struct {
	Title     string
	Extract   string
	Thumbnail string
	PageURL   string
}

// New creates a Wikipedia client with a 15-second timeout.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  "Reelhouse/1.0 (film registry enrichment; +https://github.com/thinkscotty/reelhouse)",
		apiURL:     defaultAPIURL,
		restURL:    defaultRESTURL,
	}
}

// Search finds Wikipedia articles matching a query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"format":   {"json"},
		"utf8":     {"1"},
		"srlimit":  {fmt.Sprintf("%d", limit)},
	}

	var result struct {
		Query struct {
			Search []SearchResult `json:"search"`
		} `json:"query"`
	}
	if err := c.getJSON(ctx, c.apiURL+"?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}
	return result.Query.Search, nil
}

// GetSummary fetches an article's lead section using the REST API.
func (c *Client) GetSummary(ctx context.Context, title string) (Summary, error) {
	encoded := url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	var result struct {
		Title     string `json:"title"`
		Extract   string `json:"extract"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := c.getJSON(ctx, c.restURL+"/page/summary/"+encoded, &result); err != nil {
		return Summary{}, fmt.Errorf("wikipedia summary for %q: %w", title, err)
	}

	if result.Extract == "" {
		return Summary{}, fmt.Errorf("no summary available for %q", title)
	}

	return Summary{
		Title:     result.Title,
		Extract:   result.Extract,
		Thumbnail: result.Thumbnail.Source,
		PageURL:   result.ContentURLs.Desktop.Page,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
