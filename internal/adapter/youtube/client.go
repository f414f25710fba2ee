// Package youtube implements domain.SearchProvider on top of the YouTube
// Data API v3 search endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

const (
	// DefaultBaseURL is the public Data API root.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	defaultTimeout = 10 * time.Second
	userAgent      = "ytdown/1.0"

	// musicCategoryID restricts results to the Music category.
	musicCategoryID = "10"
)

// Client implements domain.SearchProvider for YouTube
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new YouTube search client.
// An empty apiKey yields a ConfigurationError.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &domain.ConfigurationError{
			Message: domain.ErrMissingCredential.Error(),
			Err:     domain.ErrMissingCredential,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Search returns up to maxResults videos for query, in provider order.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if maxResults > domain.MaxSearchResultsCeiling {
		maxResults = domain.MaxSearchResultsCeiling
	}
	if maxResults < 1 {
		maxResults = 1
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("key", c.apiKey)
	params.Set("videoCategoryId", musicCategoryID)
	params.Set("order", "relevance")

	body, status, err := c.doRequest(ctx, "/search", params)
	if err != nil {
		return nil, &domain.ProviderError{
			Message: fmt.Sprintf("Search failed: %v", err),
			Err:     err,
		}
	}

	var resp searchResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		// Non-2xx bodies that are not JSON still deserve a status message.
		if status < 200 || status >= 300 {
			return nil, &domain.ProviderError{
				Message: fmt.Sprintf("Search failed: unexpected status code %d", status),
				Err:     goerr.New("unexpected status code", goerr.V("status", status)),
			}
		}
		c.logger.Error("youtube response parse error", "error", jsonErr, "bodyLen", len(body))
		return nil, &domain.ProviderError{
			Message: "Search failed: malformed response",
			Err:     goerr.Wrap(jsonErr, "failed to parse search response"),
		}
	}

	if resp.Error != nil {
		c.logger.Warn("youtube api error", "code", resp.Error.Code, "message", resp.Error.Message)
		return nil, &domain.ProviderError{
			Message: "API error: " + resp.Error.Message,
			Err:     goerr.New("youtube api error", goerr.V("code", resp.Error.Code)),
		}
	}
	if status < 200 || status >= 300 {
		return nil, &domain.ProviderError{
			Message: fmt.Sprintf("Search failed: unexpected status code %d", status),
			Err:     goerr.New("unexpected status code", goerr.V("status", status)),
		}
	}

	results := make([]domain.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, domain.NewSearchResult(
			item.ID.VideoID,
			cleanText(item.Snippet.Title),
			cleanText(item.Snippet.ChannelTitle),
		))
	}

	c.logger.Debug("youtube search complete", "query", query, "results", len(results))
	return results, nil
}

// doRequest performs a GET request and returns the body and status code
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("youtube request", "path", path, "q", query.Get("q"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("youtube request failed", "error", err)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, goerr.Wrap(err, "failed to read response")
	}
	return body, resp.StatusCode, nil
}

// cleanText decodes HTML entities and collapses internal whitespace
func cleanText(s string) string {
	return domain.CollapseWhitespace(html.UnescapeString(s))
}
