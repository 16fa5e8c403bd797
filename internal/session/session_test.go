package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tetraminz/estate_coach/internal/analysis"
	"github.com/tetraminz/estate_coach/internal/llm"
	"github.com/tetraminz/estate_coach/internal/responder"
)

type fakeClassifier struct {
	result analysis.Result
	err    error
}

func (f *fakeClassifier) Analyze(context.Context, string) (analysis.Result, error) {
	return f.result, f.err
}

type fakeResponder struct {
	reply string
	err   error
}

func (f *fakeResponder) Reply(context.Context, string, analysis.Result) (string, error) {
	return f.reply, f.err
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(context.Context, llm.Request) (string, error) {
	return f.reply, f.err
}

func neutralClassifier() *fakeClassifier {
	return &fakeClassifier{result: analysis.Result{
		Sentiment: analysis.SentimentNeutral,
		Intent:    analysis.IntentGeneral,
	}}
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 1, 2, 10, 30, 0, 0, time.UTC)
	}
}

func TestNewRejectsEmptyUsername(t *testing.T) {
	for _, username := range []string{"", "   "} {
		_, err := New(username, neutralClassifier(), &fakeResponder{reply: "ok"}, Options{})
		if !errors.Is(err, ErrEmptyUsername) {
			t.Fatalf("username %q: expected ErrEmptyUsername, got %v", username, err)
		}
	}
}

func TestHistoryGrowsByPairsInArrivalOrder(t *testing.T) {
	s, err := New("alice", neutralClassifier(), &fakeResponder{reply: "noted"}, Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inputs := []string{"first", "second", "third"}
	for _, text := range inputs {
		if _, ok := s.Process(context.Background(), text); !ok {
			t.Fatalf("Process(%q) skipped", text)
		}
	}

	history := s.History()
	if len(history) != 2*len(inputs) {
		t.Fatalf("expected %d utterances, got %d", 2*len(inputs), len(history))
	}
	for i, text := range inputs {
		customer := history[2*i]
		assistant := history[2*i+1]
		if customer.Speaker != SpeakerCustomer || customer.Text != text {
			t.Fatalf("pair %d customer: %+v", i, customer)
		}
		if assistant.Speaker != SpeakerAI || assistant.Text != "noted" {
			t.Fatalf("pair %d assistant: %+v", i, assistant)
		}
		if assistant.Sentiment != analysis.SentimentNeutral || assistant.Intent != analysis.IntentResponse {
			t.Fatalf("assistant tags: %+v", assistant)
		}
	}
}

func TestEmptyInputIsSkipped(t *testing.T) {
	s, err := New("alice", neutralClassifier(), &fakeResponder{reply: "ok"}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, ok := s.Process(context.Background(), text); ok {
			t.Fatalf("input %q should be skipped", text)
		}
	}
	if got := len(s.History()); got != 0 {
		t.Fatalf("expected empty history, got %d utterances", got)
	}
}

func TestOfferReportsFullBacklog(t *testing.T) {
	s, err := New("alice", neutralClassifier(), &fakeResponder{reply: "ok"}, Options{QueueSize: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Offer("one"); err != nil {
		t.Fatalf("Offer one: %v", err)
	}
	if err := s.Offer("two"); err != nil {
		t.Fatalf("Offer two: %v", err)
	}
	if err := s.Offer("three"); !errors.Is(err, ErrBacklogFull) {
		t.Fatalf("expected ErrBacklogFull, got %v", err)
	}
}

func TestRunDrainsQueueInOrder(t *testing.T) {
	s, err := New("alice", neutralClassifier(), &fakeResponder{reply: "ok"}, Options{
		PollInterval: time.Millisecond,
		Now:          fixedClock(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.Offer(fmt.Sprintf("utterance %d", i)); err != nil {
			t.Fatalf("Offer %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(s.History()) < 10 {
		if time.Now().After(deadline) {
			t.Fatalf("queue not drained, history has %d utterances", len(s.History()))
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if got := s.State(); got != StateIdle {
		t.Fatalf("expected idle after Run, got %s", got)
	}
	history := s.History()
	for i := 0; i < 5; i++ {
		if want := fmt.Sprintf("utterance %d", i); history[2*i].Text != want {
			t.Fatalf("order broken at %d: %q", i, history[2*i].Text)
		}
	}
}

func TestClassifierFailureStillRecordsDefaults(t *testing.T) {
	classifier := &fakeClassifier{
		result: analysis.Result{
			Sentiment:    analysis.SentimentNeutral,
			Intent:       analysis.IntentGeneral,
			FullAnalysis: "Unable to process analysis",
		},
		err: errors.New("model offline"),
	}
	s, err := New("alice", classifier, &fakeResponder{reply: "ok"}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Process(context.Background(), "hello"); !ok {
		t.Fatal("utterance should still be recorded")
	}
	history := s.History()
	if history[0].Sentiment != analysis.SentimentNeutral || history[0].Intent != analysis.IntentGeneral {
		t.Fatalf("expected defaults, got %+v", history[0])
	}
}

func TestPriceQuestionEndToEnd(t *testing.T) {
	classifier := analysis.NewClassifier(
		&fakeLLM{reply: "1. Sentiment: positive, the customer is eager. 2. Intent: pricing. 3. Insights."},
		"test-model", nil,
	)
	gen := responder.NewGenerator(&fakeLLM{reply: "Our two-bedroom units start at $250k."}, "test-model")

	s, err := New("alice", classifier, gen, Options{Now: fixedClock()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	reply, ok := s.Process(context.Background(), "What is the price for this property?")
	if !ok {
		t.Fatal("utterance skipped")
	}
	if reply.Text != "Our two-bedroom units start at $250k." {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected one exchange, got %d utterances", len(history))
	}
	customer := history[0]
	if customer.Intent != analysis.IntentPrice {
		t.Fatalf("expected price intent from raw input, got %q", customer.Intent)
	}
	if customer.Sentiment != analysis.SentimentPositive {
		t.Fatalf("expected positive sentiment from reply, got %q", customer.Sentiment)
	}
	if customer.Timestamp != "2025-01-02 10:30:00" {
		t.Fatalf("unexpected timestamp: %q", customer.Timestamp)
	}

	metrics := ComputeMetrics(history)
	if metrics.EngagementScore != 1 {
		t.Fatalf("engagement: %d", metrics.EngagementScore)
	}
	if metrics.SentimentPositivity != 100 {
		t.Fatalf("positivity: %v", metrics.SentimentPositivity)
	}
	if metrics.ConversionPotential != 50 {
		t.Fatalf("conversion: %v", metrics.ConversionPotential)
	}
}
