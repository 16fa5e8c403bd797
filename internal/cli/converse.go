package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/analysis"
	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/observability"
	"github.com/tetraminz/estate_coach/internal/responder"
	"github.com/tetraminz/estate_coach/internal/session"
	"github.com/tetraminz/estate_coach/internal/store"
	"github.com/tetraminz/estate_coach/internal/transcribe"
)

// NewConverseCmd creates the 'converse' command: a live call where
// each customer line is analyzed, answered and recorded.
func NewConverseCmd() *cobra.Command {
	var username string
	var audioDir string

	cmd := &cobra.Command{
		Use:   "converse",
		Short: "Run a live coaching session over stdin or audio clips",
		Long: `Read customer utterances line by line. Each line is tagged with
sentiment and intent, a reply is generated and the exchange is added to
the session history. On EOF or '/end' the session is summarized and
persisted.

With --audio-dir, .wav clips in the directory are transcribed and fed
through the session queue in filename order instead of reading stdin.`,
		Example: `  estate_coach converse --user alice
  cat call.txt | estate_coach converse --user alice
  estate_coach converse --user alice --audio-dir ./clips`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConverse(cmd, username, audioDir)
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "agent username (required)")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "Directory of .wav clips to transcribe instead of stdin")
	return cmd
}

func runConverse(cmd *cobra.Command, username, audioDir string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	classifier := analysis.NewClassifier(client, cfg.ChatModel, nil)
	gen := responder.NewGenerator(client, cfg.ChatModel)

	s, err := session.New(username, classifier, gen, session.Options{
		PollInterval: cfg.PollInterval,
		QueueSize:    cfg.InputQueueSize,
	})
	if err != nil {
		return err
	}
	ctx = observability.WithSessionID(ctx, s.ID)
	log := observability.WithFields("session_id", s.ID, "username", s.Username)
	log.Info("session started")

	files := store.NewFileStore(cfg.OutputDir)
	db, err := store.OpenSQLiteStore(cfg.DBPath)
	if err != nil {
		// the archive is optional; file persistence still works
		log.Warn("sqlite archive unavailable", "error", err)
		db = nil
	}
	defer db.Close()
	recorder := session.NewRecorder(files, db, gen)
	out := cmd.OutOrStdout()

	if audioDir != "" {
		if err := converseFromAudio(ctx, cfg, s, out, audioDir); err != nil {
			return err
		}
		recorder.Finalize(ctx, s)
		fmt.Fprintln(out, "Session saved.")
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(out, "Type customer utterances, '/end' to finish the call.")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/end" {
			break
		}
		reply, ok := s.Process(ctx, line)
		if !ok {
			continue
		}
		history := s.History()
		customer := history[len(history)-2]
		fmt.Fprintf(out, "[%s | %s]\n", customer.Sentiment, customer.Intent)
		fmt.Fprintf(out, "AI: %s\n", reply.Text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	recorder.Finalize(ctx, s)
	fmt.Fprintln(out, "Session saved.")
	return nil
}

// converseFromAudio transcribes .wav clips in filename order and
// feeds them through the session queue while the session loop drains
// it. Silence and backlog overflows are logged and skipped.
func converseFromAudio(ctx context.Context, cfg *config.Config, s *session.Session, out io.Writer, dir string) error {
	log := observability.LoggerFromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read audio dir %s: %w", dir, err)
	}
	var clips []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".wav") {
			clips = append(clips, entry.Name())
		}
	}
	sort.Strings(clips)
	if len(clips) == 0 {
		return fmt.Errorf("no .wav clips under %s", dir)
	}

	transcriber := transcribe.NewWitClient(cfg.WitAPIKey, cfg.WitBaseURL, nil)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		s.Run(runCtx)
		close(done)
	}()

	offered := 0
	for _, name := range clips {
		audio, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			cancel()
			<-done
			return fmt.Errorf("read clip %s: %w", name, err)
		}
		result, err := transcriber.Transcribe(ctx, audio)
		if err != nil {
			if errors.Is(err, transcribe.ErrNoSpeech) {
				log.Info("no speech in clip", "clip", name)
				continue
			}
			log.Warn("transcription failed", "clip", name, "error", err)
			continue
		}
		fmt.Fprintf(out, "Customer: %s\n", result.Text)
		if err := s.Offer(result.Text); err != nil {
			log.Warn("utterance dropped", "clip", name, "error", err)
			continue
		}
		offered++
	}

	// let the loop drain what was queued
	deadline := time.Now().Add(30 * time.Second)
	for len(s.History()) < 2*offered && time.Now().Before(deadline) {
		time.Sleep(cfg.PollInterval)
	}
	cancel()
	<-done

	for _, u := range s.History() {
		if u.Speaker == session.SpeakerAI {
			fmt.Fprintf(out, "AI: %s\n", u.Text)
		}
	}
	return nil
}
