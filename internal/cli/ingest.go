package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/observability"
	"github.com/tetraminz/estate_coach/internal/retrieval"
)

// NewIngestCmd creates the 'ingest' command: load documents into the
// knowledge base used by 'ask'.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Index documents into the knowledge base",
		Long: `Read .txt and .md files from a directory, split them into
paragraph chunks and index them into the configured backend.`,
		Example: `  estate_coach ingest ./docs
  ESTATE_RETRIEVER=vector estate_coach ingest ./docs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0])
		},
	}
	return cmd
}

func runIngest(cmd *cobra.Command, dir string) error {
	cfg := config.Load()
	ctx := cmd.Context()
	log := observability.Logger()

	docs, err := loadDocuments(dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no .txt or .md files under %s", dir)
	}
	log.Info("documents loaded", "dir", dir, "chunks", len(docs))

	switch cfg.Retriever {
	case config.RetrieverVector:
		index := retrieval.NewIndexClient(cfg.VectorAPIKey, cfg.VectorControlURL, cfg.VectorDataURL, nil)
		if err := index.EnsureIndex(ctx, retrieval.DefaultIndexConfig(), cfg.ProvisionTimeout); err != nil {
			return fmt.Errorf("ensure vector index: %w", err)
		}
		embedder := retrieval.NewHTTPEmbedder(cfg.EmbedAPIKey, cfg.EmbedBaseURL, cfg.EmbedModel, nil)
		vectors := make([][]float64, len(docs))
		for i, doc := range docs {
			vectors[i], err = embedder.Embed(ctx, doc.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", doc.ID, err)
			}
		}
		if err := index.Upsert(ctx, docs, vectors); err != nil {
			return err
		}
	case config.RetrieverLocal:
		if cfg.LocalIndexPath == "" {
			return fmt.Errorf("ESTATE_LOCAL_INDEX_PATH is required for local ingest")
		}
		local, err := retrieval.OpenIndex(cfg.LocalIndexPath)
		if err != nil {
			return err
		}
		defer local.Close()
		if err := local.IndexDocuments(docs); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown retriever backend %q", cfg.Retriever)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks.\n", len(docs))
	return nil
}

// loadDocuments splits every text file in dir into paragraph chunks.
func loadDocuments(dir string) ([]retrieval.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var docs []retrieval.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		for i, chunk := range splitParagraphs(string(raw)) {
			docs = append(docs, retrieval.Document{
				ID:     fmt.Sprintf("%s#%d", entry.Name(), i),
				Text:   chunk,
				Source: entry.Name(),
			})
		}
	}
	return docs, nil
}

func splitParagraphs(text string) []string {
	var chunks []string
	for _, part := range strings.Split(text, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}
