package retrieval

import (
	"context"
	"testing"
)

func TestLocalIndexSearchRanksMatches(t *testing.T) {
	index, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer index.Close()

	docs := []Document{
		{ID: "d1", Text: "Downtown apartments with river views and balconies.", Source: "listings.csv"},
		{ID: "d2", Text: "Mortgage rates and financing options for buyers.", Source: "finance.md"},
		{ID: "d3", Text: "Suburban houses with large gardens.", Source: "listings.csv"},
	}
	if err := index.IndexDocuments(docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	count, err := index.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 documents, got %d", count)
	}

	results, err := index.Search(context.Background(), "mortgage financing", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one match")
	}
	if results[0].ID != "d2" {
		t.Fatalf("expected d2 first, got %+v", results[0])
	}
	if results[0].Text == "" || results[0].Source != "finance.md" {
		t.Fatalf("expected stored fields, got %+v", results[0])
	}
}

func TestLocalIndexRejectsMissingID(t *testing.T) {
	index, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer index.Close()

	if err := index.IndexDocuments([]Document{{Text: "no id"}}); err == nil {
		t.Fatal("expected error for document without id")
	}
}
