package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tetraminz/estate_coach/internal/observability"
	"github.com/tetraminz/estate_coach/internal/store"
)

// Summarizer condenses a rendered transcript into a few sentences.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Recorder persists a finished session: transcript and metrics CSVs,
// the post-call summary file and the SQLite archive.
type Recorder struct {
	files      *store.FileStore
	db         *store.SQLiteStore
	summarizer Summarizer
}

func NewRecorder(files *store.FileStore, db *store.SQLiteStore, summarizer Summarizer) *Recorder {
	return &Recorder{files: files, db: db, summarizer: summarizer}
}

// Finalize runs teardown for the session. An empty history writes
// nothing and requests no summary. Individual persistence failures
// are logged and teardown proceeds, so one broken sink never loses
// the rest. The session history is cleared afterwards.
func (r *Recorder) Finalize(ctx context.Context, s *Session) {
	log := observability.LoggerFromContext(ctx).With("session_id", s.ID, "username", s.Username)

	history := s.History()
	if len(history) == 0 {
		log.Info("session empty, nothing to persist")
		s.Reset()
		return
	}

	summary := ""
	if r.summarizer != nil {
		var err error
		summary, err = r.summarizer.Summarize(ctx, RenderTranscript(history))
		if err != nil {
			// summarizer already substituted its fallback text
			log.Warn("summary degraded", "error", err)
		}
	}

	rows := toTranscriptRows(history)
	metrics := ComputeMetrics(history)

	if r.files != nil {
		if err := r.files.AppendTranscript(s.Username, rows); err != nil {
			log.Error("persist transcript failed", "error", err)
		}
		if err := r.files.AppendMetrics(s.Username, metrics); err != nil {
			log.Error("persist metrics failed", "error", err)
		}
		if summary != "" {
			if err := r.files.WriteSummary(s.Username, summary); err != nil {
				log.Error("persist summary failed", "error", err)
			}
		}
	}

	if r.db != nil {
		record := store.SessionRecord{
			SessionID:    s.ID,
			Username:     s.Username,
			StartedAtUTC: s.StartedAt().UTC().Format(time.RFC3339),
			EndedAtUTC:   time.Now().UTC().Format(time.RFC3339),
			Metrics:      metrics,
			Summary:      summary,
			Utterances:   rows,
		}
		if err := r.db.SaveSession(record); err != nil {
			log.Error("archive session failed", "error", err)
		}
	}

	log.Info("session persisted",
		"utterances", len(history),
		"engagement", metrics.EngagementScore,
		"conversion", metrics.ConversionPotential,
	)
	s.Reset()
}

// RenderTranscript flattens the history into the line format the
// summarizer consumes.
func RenderTranscript(history []Utterance) string {
	var b strings.Builder
	for _, u := range history {
		fmt.Fprintf(&b, "%s: %s\n", u.Timestamp, u.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func toTranscriptRows(history []Utterance) []store.TranscriptRow {
	rows := make([]store.TranscriptRow, 0, len(history))
	for _, u := range history {
		rows = append(rows, store.TranscriptRow{
			Timestamp: u.Timestamp,
			Speaker:   u.Speaker,
			Text:      u.Text,
			Sentiment: u.Sentiment,
			Intent:    u.Intent,
		})
	}
	return rows
}
