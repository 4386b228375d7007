// Package wikipedia implements the Wikipedia-grounded retriever on top
// of the MediaWiki action API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ragchat/internal/retrieval"
)

const defaultAPIBaseURL = "https://en.wikipedia.org/w/api.php"

// Client retrieves article extracts relevant to a query. It implements
// retrieval.Retriever.
type Client struct {
	baseURL string
	topK    int
	maxLen  int
	client  *http.Client
}

// New creates a Wikipedia retriever returning at most topK articles,
// each extract truncated to maxLen characters.
func New(topK, maxLen int) *Client {
	return &Client{
		baseURL: defaultAPIBaseURL,
		topK:    topK,
		maxLen:  maxLen,
		client:  &http.Client{},
	}
}

// NewWithBaseURL creates a client against a non-default API endpoint
// (other language editions, or a test server).
func NewWithBaseURL(baseURL string, topK, maxLen int) *Client {
	c := New(topK, maxLen)
	c.baseURL = baseURL
	return c
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

type extractsResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
}

// Retrieve searches for articles matching the query and returns their
// plain-text extracts in search-ranking order.
func (c *Client) Retrieve(ctx context.Context, query string) (*retrieval.Result, error) {
	pageIDs, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(pageIDs) == 0 {
		return &retrieval.Result{}, nil
	}

	chunks, err := c.extracts(ctx, pageIDs)
	if err != nil {
		return nil, err
	}
	return &retrieval.Result{Chunks: chunks}, nil
}

func (c *Client) search(ctx context.Context, query string) ([]int, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(c.topK)},
		"format":   {"json"},
	}

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}

	ids := make([]int, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		ids = append(ids, s.PageID)
	}
	return ids, nil
}

func (c *Client) extracts(ctx context.Context, pageIDs []int) ([]retrieval.Chunk, error) {
	idStrs := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		idStrs[i] = strconv.Itoa(id)
	}

	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts|info"},
		"explaintext": {"1"},
		"inprop":      {"url"},
		"pageids":     {strings.Join(idStrs, "|")},
		"format":      {"json"},
	}

	var resp extractsResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("wikipedia extracts: %w", err)
	}

	// The pages object is keyed by page id; rebuild search-ranking order.
	chunks := make([]retrieval.Chunk, 0, len(pageIDs))
	for _, idStr := range idStrs {
		page, ok := resp.Query.Pages[idStr]
		if !ok {
			continue
		}
		extract := page.Extract
		if c.maxLen > 0 && len(extract) > c.maxLen {
			extract = extract[:c.maxLen]
		}
		chunks = append(chunks, retrieval.Chunk{
			Content: extract,
			Source:  page.Title,
			URL:     page.FullURL,
		})
	}
	return chunks, nil
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unmarshalling response: %w", err)
	}
	return nil
}
