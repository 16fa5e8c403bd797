package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/tetraminz/estate_coach/internal/llm"
)

const classifierMaxTokens = 100

const classifierSystemPrompt = "You are an advanced Real Estate Negotiation AI. " +
	"Analyze the following customer statement and provide: " +
	"1. Sentiment (Positive/Neutral/Negative) " +
	"2. Primary Intent " +
	"3. Recommended Negotiation Approach"

// Result — итог классификации одного customer utterance.
//
// Sentiment и Intent всегда заполнены: при любой ошибке удаленного
// сервиса возвращается дефолтная пара {Neutral, General Inquiry},
// чтобы классификация никогда не блокировала конвейер.
type Result struct {
	Sentiment    string
	Intent       string
	FullAnalysis string
}

func defaultResult() Result {
	return Result{
		Sentiment:    SentimentNeutral,
		Intent:       IntentGeneral,
		FullAnalysis: "Unable to process analysis",
	}
}

// Classifier tags customer utterances with sentiment and intent.
type Classifier struct {
	client llm.Client
	model  string
	rules  []IntentRule
}

// NewClassifier builds a classifier. A nil rules slice selects the
// default keyword policy.
func NewClassifier(client llm.Client, model string, rules []IntentRule) *Classifier {
	if rules == nil {
		rules = DefaultIntentRules()
	}
	return &Classifier{
		client: client,
		model:  strings.TrimSpace(model),
		rules:  rules,
	}
}

// Analyze issues one chat request and parses the reply defensively.
// The returned error is informational: the Result is always usable.
func (c *Classifier) Analyze(ctx context.Context, text string) (Result, error) {
	if c.client == nil {
		return defaultResult(), fmt.Errorf("llm client is not configured")
	}

	reply, err := c.client.Complete(ctx, llm.Request{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "system", Content: classifierSystemPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens: classifierMaxTokens,
	})
	if err != nil {
		return defaultResult(), fmt.Errorf("classification request: %w", err)
	}

	return Result{
		Sentiment:    ParseSentiment(reply),
		Intent:       DetectIntent(text, c.rules),
		FullAnalysis: reply,
	}, nil
}
