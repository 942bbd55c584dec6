package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Result is the uniform shape handed to the agent regardless of provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client performs web searches. Implementations must treat provider failures
// as recoverable: the agent degrades to empty results, it never aborts a turn.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// TavilyClient implements Client against the Tavily search API.
type TavilyClient struct {
	httpClient *resty.Client
	apiKey     string
	maxResults int
}

var _ Client = (*TavilyClient)(nil)

func NewTavilyClient(apiKey string, maxResults int) *TavilyClient {
	if maxResults <= 0 {
		maxResults = 5
	}
	client := resty.New().
		SetHeader("User-Agent", "chatspace-backend/1.0").
		SetTimeout(15 * time.Second)

	return &TavilyClient{
		httpClient: client,
		apiKey:     apiKey,
		maxResults: maxResults,
	}
}

type tavilySearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	var result tavilySearchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(tavilySearchRequest{
			Query:      query,
			MaxResults: c.maxResults,
		}).
		SetResult(&result).
		Post(tavilyEndpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to query Tavily search API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("Tavily search API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	results := make([]Result, 0, len(result.Results))
	for _, r := range result.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
		if len(results) >= c.maxResults {
			break
		}
	}
	return results, nil
}
