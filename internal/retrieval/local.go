package retrieval

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// LocalIndex is a full-text index over ingested documents, used when
// no vector index is configured. Safe for concurrent use.
type LocalIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

func documentMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("text", bleve.NewTextFieldMapping())

	sourceMapping := bleve.NewTextFieldMapping()
	sourceMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("source", sourceMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// NewMemoryIndex builds an in-memory index, mostly for tests and
// one-shot runs.
func NewMemoryIndex() (*LocalIndex, error) {
	index, err := bleve.NewMemOnly(documentMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &LocalIndex{index: index}, nil
}

// OpenIndex opens the index at path, creating it when absent.
func OpenIndex(path string) (*LocalIndex, error) {
	index, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("open index %s: %w", path, err)
		}
		index, err = bleve.New(path, documentMapping())
		if err != nil {
			return nil, fmt.Errorf("create index %s: %w", path, err)
		}
	}
	return &LocalIndex{index: index}, nil
}

// IndexDocuments adds or replaces documents in a single batch.
func (l *LocalIndex) IndexDocuments(docs []Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.index.NewBatch()
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document without id")
		}
		entry := map[string]interface{}{
			"text":   doc.Text,
			"source": doc.Source,
		}
		if err := batch.Index(doc.ID, entry); err != nil {
			return fmt.Errorf("batch document %s: %w", doc.ID, err)
		}
	}
	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

// Search returns up to k documents ranked by text-match score.
func (l *LocalIndex) Search(ctx context.Context, query string, k int) ([]Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if k <= 0 {
		k = 10
	}
	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("text")
	req := bleve.NewSearchRequestOptions(matchQuery, k, 0, false)
	req.Fields = []string{"text", "source"}

	res, err := l.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	docs := make([]Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc := Document{ID: hit.ID, Score: hit.Score}
		if text, ok := hit.Fields["text"].(string); ok {
			doc.Text = text
		}
		if source, ok := hit.Fields["source"].(string); ok {
			doc.Source = source
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Count returns the number of indexed documents.
func (l *LocalIndex) Count() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.DocCount()
}

func (l *LocalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index.Close()
}
