package model

// SearchResult is one normalized evidence item returned by the retrieval
// service. Results keep the order and score assigned upstream; nothing in
// this package re-ranks or filters them.
type SearchResult struct {
	Title    string         `json:"title"`
	Snippet  string         `json:"snippet"`
	URL      string         `json:"url,omitempty"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// NewSearchResult creates a SearchResult with its own metadata map. Metadata
// must never be nil and must never be shared between results.
func NewSearchResult(title, snippet, url string, score float64, metadata map[string]any) *SearchResult {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &SearchResult{
		Title:    title,
		Snippet:  snippet,
		URL:      url,
		Score:    score,
		Metadata: metadata,
	}
}
