package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/retrieval"
)

// NewAskCmd creates the 'ask' command: answer a question from the
// ingested knowledge base.
func NewAskCmd() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the knowledge base",
		Example: `  estate_coach ask "what financing options do we offer"
  ESTATE_RETRIEVER=vector estate_coach ask "pet policy" --sources`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), showSources)
		},
	}

	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Show retrieved chunks")
	return cmd
}

func runAsk(cmd *cobra.Command, question string, showSources bool) error {
	cfg := config.Load()
	ctx := cmd.Context()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	retriever, local, err := newRetriever(ctx, cfg)
	if err != nil {
		return err
	}
	if local != nil {
		defer local.Close()
	}

	answerer := retrieval.NewAnswerer(retriever, client, cfg.ChatModel, cfg.TopK)
	answer, err := answerer.Ask(ctx, question, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)
	if showSources {
		fmt.Fprintln(out)
		for i, doc := range answer.Sources {
			fmt.Fprintf(out, "[%d] %s (score %.3f)\n", i+1, doc.Source, doc.Score)
		}
	}
	return nil
}
