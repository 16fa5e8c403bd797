package store

import (
	"testing"
)

func TestTranscriptRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	first := []TranscriptRow{
		{Timestamp: "2025-01-02 10:30:00", Speaker: "Customer", Text: "What is the price?", Sentiment: "Neutral", Intent: "Price Negotiation"},
		{Timestamp: "2025-01-02 10:30:05", Speaker: "AI", Text: "Happy to discuss pricing.", Sentiment: "Neutral", Intent: "Response"},
	}
	if err := fs.AppendTranscript("alice", first); err != nil {
		t.Fatalf("AppendTranscript: %v", err)
	}

	second := []TranscriptRow{
		{Timestamp: "2025-01-03 09:00:00", Speaker: "Customer", Text: "I want to buy, near the park", Sentiment: "Positive", Intent: "Purchase Inquiry"},
	}
	if err := fs.AppendTranscript("alice", second); err != nil {
		t.Fatalf("AppendTranscript second session: %v", err)
	}

	rows, err := fs.ReadTranscript("alice")
	if err != nil {
		t.Fatalf("ReadTranscript: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows across sessions, got %d", len(rows))
	}
	if rows[0] != first[0] || rows[1] != first[1] || rows[2] != second[0] {
		t.Fatalf("round trip mismatch: %+v", rows)
	}
}

func TestAppendTranscriptSkipsEmptySessions(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	if err := fs.AppendTranscript("bob", nil); err != nil {
		t.Fatalf("AppendTranscript(nil): %v", err)
	}
	if _, err := fs.ReadTranscript("bob"); err == nil {
		t.Fatal("expected no transcript file for empty session")
	}
	names, err := fs.Usernames()
	if err != nil {
		t.Fatalf("Usernames: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no users, got %v", names)
	}
}

func TestMetricsAppendAndRead(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	if err := fs.AppendMetrics("alice", MetricsRow{EngagementScore: 3, SentimentPositivity: 66.67, ConversionPotential: 70}); err != nil {
		t.Fatalf("AppendMetrics: %v", err)
	}
	if err := fs.AppendMetrics("alice", MetricsRow{EngagementScore: 1, SentimentPositivity: 0, ConversionPotential: 20}); err != nil {
		t.Fatalf("AppendMetrics second: %v", err)
	}

	rows, err := fs.ReadMetrics("alice")
	if err != nil {
		t.Fatalf("ReadMetrics: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(rows))
	}
	if rows[0].EngagementScore != 3 || rows[0].ConversionPotential != 70 {
		t.Fatalf("unexpected first snapshot: %+v", rows[0])
	}
}

func TestSummaryOverwrites(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	if err := fs.WriteSummary("alice", "first call summary"); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if err := fs.WriteSummary("alice", "second call summary"); err != nil {
		t.Fatalf("WriteSummary overwrite: %v", err)
	}
	got, err := fs.ReadSummary("alice")
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if got != "second call summary" {
		t.Fatalf("expected latest summary, got %q", got)
	}
}

func TestUsernamesFromTranscripts(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	row := []TranscriptRow{{Timestamp: "t", Speaker: "Customer", Text: "hi", Sentiment: "Neutral", Intent: "General Inquiry"}}
	if err := fs.AppendTranscript("alice", row); err != nil {
		t.Fatalf("AppendTranscript alice: %v", err)
	}
	if err := fs.AppendTranscript("bob", row); err != nil {
		t.Fatalf("AppendTranscript bob: %v", err)
	}
	names, err := fs.Usernames()
	if err != nil {
		t.Fatalf("Usernames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 users, got %v", names)
	}
}
