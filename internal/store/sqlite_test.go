package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveSessionAndLoadBack(t *testing.T) {
	s := openTestStore(t)

	record := SessionRecord{
		SessionID:    "s-1",
		Username:     "alice",
		StartedAtUTC: "2025-01-02T10:00:00Z",
		EndedAtUTC:   "2025-01-02T10:15:00Z",
		Metrics:      MetricsRow{EngagementScore: 2, SentimentPositivity: 50, ConversionPotential: 50},
		Summary:      "Customer asked about pricing.",
		Utterances: []TranscriptRow{
			{Timestamp: "2025-01-02 10:00:01", Speaker: "Customer", Text: "What is the price?", Sentiment: "Neutral", Intent: "Price Negotiation"},
			{Timestamp: "2025-01-02 10:00:05", Speaker: "AI", Text: "Happy to discuss.", Sentiment: "Neutral", Intent: "Response"},
		},
	}
	if err := s.SaveSession(record); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	sessions, err := s.SessionsByUser("alice")
	if err != nil {
		t.Fatalf("SessionsByUser: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.SessionID != "s-1" || got.Summary != record.Summary {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Metrics.ConversionPotential != 50 {
		t.Fatalf("unexpected metrics: %+v", got.Metrics)
	}

	utterances, err := s.SessionUtterances("s-1")
	if err != nil {
		t.Fatalf("SessionUtterances: %v", err)
	}
	if len(utterances) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(utterances))
	}
	if utterances[0].Text != "What is the price?" || utterances[1].Speaker != "AI" {
		t.Fatalf("utterance order broken: %+v", utterances)
	}
}

func TestSaveSessionRequiresID(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveSession(SessionRecord{Username: "alice"}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}

func TestRecentSessionsOrderedByEnd(t *testing.T) {
	s := openTestStore(t)
	for _, record := range []SessionRecord{
		{SessionID: "s-1", Username: "alice", StartedAtUTC: "2025-01-01T10:00:00Z", EndedAtUTC: "2025-01-01T10:10:00Z"},
		{SessionID: "s-2", Username: "bob", StartedAtUTC: "2025-01-02T10:00:00Z", EndedAtUTC: "2025-01-02T10:10:00Z"},
		{SessionID: "s-3", Username: "alice", StartedAtUTC: "2025-01-03T10:00:00Z", EndedAtUTC: "2025-01-03T10:10:00Z"},
	} {
		if err := s.SaveSession(record); err != nil {
			t.Fatalf("SaveSession %s: %v", record.SessionID, err)
		}
	}

	recent, err := s.RecentSessions(2)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(recent))
	}
	if recent[0].SessionID != "s-3" || recent[1].SessionID != "s-2" {
		t.Fatalf("unexpected order: %s, %s", recent[0].SessionID, recent[1].SessionID)
	}
}
