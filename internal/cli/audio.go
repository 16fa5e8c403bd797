package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/speech"
	"github.com/tetraminz/estate_coach/internal/transcribe"
)

// NewTranscribeCmd creates the 'transcribe' command: speech-to-text
// for a recorded clip.
func NewTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transcribe <file.wav>",
		Short:   "Transcribe a recorded audio clip",
		Example: `  estate_coach transcribe call_fragment.wav`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, args[0])
		},
	}
	return cmd
}

func runTranscribe(cmd *cobra.Command, path string) error {
	cfg := config.Load()

	audio, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audio %s: %w", path, err)
	}

	client := transcribe.NewWitClient(cfg.WitAPIKey, cfg.WitBaseURL, nil)
	result, err := client.Transcribe(cmd.Context(), audio)
	if err != nil {
		if errors.Is(err, transcribe.ErrNoSpeech) {
			fmt.Fprintln(cmd.OutOrStdout(), "(no speech detected)")
			return nil
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Timestamp, result.Text)
	return nil
}

// NewSayCmd creates the 'say' command: text-to-speech into a file.
func NewSayCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "say <text>",
		Short:   "Synthesize speech for a reply",
		Example: `  estate_coach say "Our two-bedroom units start at $250k" -o reply.mp3`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSay(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "reply.mp3", "Output audio file")
	return cmd
}

func runSay(cmd *cobra.Command, args []string, output string) error {
	cfg := config.Load()

	synth := speech.NewSynthesizer(cfg.ElevenAPIKey, cfg.ElevenBaseURL, cfg.ElevenVoice, nil)
	text := ""
	for i, arg := range args {
		if i > 0 {
			text += " "
		}
		text += arg
	}

	stream, err := synth.Synthesize(cmd.Context(), text)
	if err != nil {
		return err
	}
	defer stream.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, stream); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
	return nil
}
