// Package cli wires the configured components into cobra commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/llm"
	"github.com/tetraminz/estate_coach/internal/retrieval"
)

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "estate_coach",
		Short: "Real-estate sales coaching assistant",
		Long: `estate_coach analyzes live sales conversations: it tags customer
utterances with sentiment and intent, generates replies, tracks call
metrics and archives every session for the dashboard.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		NewConverseCmd(),
		NewCoachCmd(),
		NewAskCmd(),
		NewIngestCmd(),
		NewTranscribeCmd(),
		NewSayCmd(),
		NewCRMCmd(),
		NewHomeCmd(),
		NewPerfCmd(),
		NewReportCmd(),
		NewTranscriptCmd(),
	)
	return root
}

// newLLMClient picks the chat backend from config.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.Provider {
	case config.ProviderGroq:
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, nil), nil
	case config.ProviderGemini:
		return llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	case config.ProviderMock:
		return llm.StaticClient{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// newRetriever picks the knowledge-base backend from config. The
// caller closes the returned index when non-nil.
func newRetriever(ctx context.Context, cfg *config.Config) (retrieval.Retriever, *retrieval.LocalIndex, error) {
	switch cfg.Retriever {
	case config.RetrieverVector:
		index := retrieval.NewIndexClient(cfg.VectorAPIKey, cfg.VectorControlURL, cfg.VectorDataURL, nil)
		if err := index.EnsureIndex(ctx, retrieval.DefaultIndexConfig(), cfg.ProvisionTimeout); err != nil {
			return nil, nil, fmt.Errorf("ensure vector index: %w", err)
		}
		embedder := retrieval.NewHTTPEmbedder(cfg.EmbedAPIKey, cfg.EmbedBaseURL, cfg.EmbedModel, nil)
		return retrieval.NewVectorRetriever(index, embedder), nil, nil
	case config.RetrieverLocal:
		var local *retrieval.LocalIndex
		var err error
		if cfg.LocalIndexPath == "" {
			local, err = retrieval.NewMemoryIndex()
		} else {
			local, err = retrieval.OpenIndex(cfg.LocalIndexPath)
		}
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	default:
		return nil, nil, fmt.Errorf("unknown retriever backend %q", cfg.Retriever)
	}
}
