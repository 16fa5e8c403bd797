package responder

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tetraminz/estate_coach/internal/analysis"
	"github.com/tetraminz/estate_coach/internal/llm"
)

type fakeLLM struct {
	reply string
	err   error
	last  llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestReplyEmbedsSentimentAndIntent(t *testing.T) {
	fake := &fakeLLM{reply: "Happy to walk you through the pricing options."}
	gen := NewGenerator(fake, "llama3-8b-8192")

	got, err := gen.Reply(context.Background(), "What is the price?", analysis.Result{
		Sentiment: analysis.SentimentPositive,
		Intent:    analysis.IntentPrice,
	})
	if err != nil {
		t.Fatalf("Reply error: %v", err)
	}
	if got == "" {
		t.Fatalf("expected non-empty reply")
	}
	system := fake.last.Messages[0].Content
	if !strings.Contains(system, "Customer Sentiment: Positive") {
		t.Fatalf("system prompt missing sentiment: %q", system)
	}
	if !strings.Contains(system, "Customer Intent: Price Negotiation") {
		t.Fatalf("system prompt missing intent: %q", system)
	}
	if fake.last.MaxTokens != replyMaxTokens {
		t.Fatalf("max tokens got %d want %d", fake.last.MaxTokens, replyMaxTokens)
	}
}

func TestReplyFailureReturnsFallback(t *testing.T) {
	fake := &fakeLLM{err: fmt.Errorf("boom")}
	gen := NewGenerator(fake, "llama3-8b-8192")

	got, err := gen.Reply(context.Background(), "hello", analysis.Result{})
	if err == nil {
		t.Fatalf("expected informational error")
	}
	if got != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", got)
	}
}

func TestSummarizeFailureReturnsFixedString(t *testing.T) {
	fake := &fakeLLM{err: fmt.Errorf("boom")}
	gen := NewGenerator(fake, "llama3-8b-8192")

	got, err := gen.Summarize(context.Background(), "2025-01-01 10:00:00: hi")
	if err == nil {
		t.Fatalf("expected informational error")
	}
	if got != FallbackSummary {
		t.Fatalf("expected %q, got %q", FallbackSummary, got)
	}
}

func TestCoachUsesPersonaAndBudget(t *testing.T) {
	fake := &fakeLLM{reply: "Offer a combo discount."}
	gen := NewGenerator(fake, "llama3-8b-8192")

	got, err := gen.Coach(context.Background(), []llm.Message{
		{Role: "user", Content: "too expensive"},
	})
	if err != nil {
		t.Fatalf("Coach error: %v", err)
	}
	if got != "Offer a combo discount." {
		t.Fatalf("unexpected reply: %q", got)
	}
	if fake.last.MaxTokens != coachMaxTokens {
		t.Fatalf("max tokens got %d want %d", fake.last.MaxTokens, coachMaxTokens)
	}
	if !strings.Contains(fake.last.Messages[0].Content, "Negotiation Coach") {
		t.Fatalf("coach persona missing from system prompt")
	}
	if fake.last.Temperature != 0.7 {
		t.Fatalf("temperature got %v want 0.7", fake.last.Temperature)
	}
}
