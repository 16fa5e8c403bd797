package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/llm"
	"github.com/tetraminz/estate_coach/internal/responder"
)

// NewCoachCmd creates the 'coach' command: a free-form chat with the
// sales coach persona.
func NewCoachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Chat with the sales coach persona",
		Long: `An interactive chat with the coaching persona. Only the most
recent exchanges are sent to the model, so long chats stay cheap.`,
		Example: `  estate_coach coach`,
		RunE:    runCoach,
	}
	return cmd
}

func runCoach(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	gen := responder.NewGenerator(client, cfg.ChatModel)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Chat with your coach. Empty line to exit.")

	var history []llm.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		history = append(history, llm.Message{Role: "user", Content: line})
		if len(history) > cfg.HistoryWindow {
			history = history[len(history)-cfg.HistoryWindow:]
		}

		reply, err := gen.Coach(ctx, history)
		if err != nil {
			// Coach already returned its fallback text
			fmt.Fprintln(out, reply)
			continue
		}
		history = append(history, llm.Message{Role: "assistant", Content: reply})
		fmt.Fprintln(out, reply)
	}
	return scanner.Err()
}
