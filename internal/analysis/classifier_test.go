package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/tetraminz/estate_coach/internal/llm"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
	last  llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestDetectIntentPriorityOrder(t *testing.T) {
	rules := DefaultIntentRules()
	cases := map[string]string{
		"I want to buy this flat":                    IntentPurchase,
		"What is the price for this property?":       IntentPrice,
		"the LOCATION matters to me":                 IntentLocation,
		"can you buy down the price for me":          IntentPurchase,
		"is the price fair for that location":        IntentPrice,
		"tell me about the neighborhood":             IntentGeneral,
		"":                                           IntentGeneral,
		"Price negotiations aside, nice view":        IntentPrice,
	}
	for in, want := range cases {
		if got := DetectIntent(in, rules); got != want {
			t.Fatalf("DetectIntent(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDetectIntentInjectablePolicy(t *testing.T) {
	rules := []IntentRule{
		{Keyword: "mortgage", Intent: "Financing Inquiry"},
		{Keyword: "buy", Intent: IntentPurchase},
	}
	if got := DetectIntent("can I get a mortgage to buy it", rules); got != "Financing Inquiry" {
		t.Fatalf("expected first rule to win, got %q", got)
	}
}

func TestParseSentiment(t *testing.T) {
	cases := map[string]string{
		"The customer sounds Positive and engaged":     SentimentPositive,
		"clearly NEGATIVE tone":                        SentimentNegative,
		"sentiment is positive despite negative words": SentimentPositive,
		"hard to say":                                  SentimentNeutral,
		"":                                             SentimentNeutral,
	}
	for in, want := range cases {
		if got := ParseSentiment(in); got != want {
			t.Fatalf("ParseSentiment(%q)=%q want %q", in, got, want)
		}
	}
}

func TestAnalyzeUsesReplyForSentimentAndInputForIntent(t *testing.T) {
	fake := &fakeLLM{reply: "1. Sentiment: Positive 2. Intent: something"}
	classifier := NewClassifier(fake, "llama3-8b-8192", nil)

	res, err := classifier.Analyze(context.Background(), "What is the price for this property?")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if res.Sentiment != SentimentPositive {
		t.Fatalf("sentiment got %q want %q", res.Sentiment, SentimentPositive)
	}
	if res.Intent != IntentPrice {
		t.Fatalf("intent got %q want %q", res.Intent, IntentPrice)
	}
	if fake.last.MaxTokens != classifierMaxTokens {
		t.Fatalf("max tokens got %d want %d", fake.last.MaxTokens, classifierMaxTokens)
	}
}

func TestAnalyzeFailureReturnsExactDefaults(t *testing.T) {
	fake := &fakeLLM{err: fmt.Errorf("connection refused")}
	classifier := NewClassifier(fake, "llama3-8b-8192", nil)

	res, err := classifier.Analyze(context.Background(), "I want to buy a house")
	if err == nil {
		t.Fatalf("expected informational error")
	}
	if res.Sentiment != SentimentNeutral || res.Intent != IntentGeneral {
		t.Fatalf("expected {Neutral, General Inquiry}, got {%s, %s}", res.Sentiment, res.Intent)
	}
}
