package retrieval

import "context"

// Document is one retrieved chunk with its relevance score.
type Document struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Retriever returns the top-k document chunks for a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Document, error)
}
