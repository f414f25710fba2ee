package domain

import "context"

// MaxSearchResultsCeiling is the hard cap applied to every search request,
// regardless of the configured result count.
const MaxSearchResultsCeiling = 25

// SearchTitleDisplayLength is the number of runes of a result title shown
// before the ellipsis marker.
const SearchTitleDisplayLength = 60

// SearchResult is a single video returned by the search provider.
// Values are immutable once produced.
type SearchResult struct {
	VideoID     string
	Title       string
	Channel     string
	SourceURL   string
	DisplayLine string
}

// SearchProvider queries the external video catalog.
// Results are returned in provider order.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// NewSearchResult builds a SearchResult with its source URL and display line.
func NewSearchResult(videoID, title, channel string) SearchResult {
	return SearchResult{
		VideoID:     videoID,
		Title:       title,
		Channel:     channel,
		SourceURL:   "https://www.youtube.com/watch?v=" + videoID,
		DisplayLine: "♪ " + Truncate(title, SearchTitleDisplayLength) + "\n  👤 " + channel,
	}
}
