package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/tetraminz/estate_coach/internal/analysis"
	"github.com/tetraminz/estate_coach/internal/llm"
)

const (
	replyMaxTokens   = 150
	summaryMaxTokens = 150
	coachMaxTokens   = 500

	// FallbackReply is returned when the generation request fails.
	FallbackReply = "I'm here to help. Could you tell me more about what you're looking for in a property?"

	// FallbackSummary is returned when summarization fails.
	FallbackSummary = "Summary generation failed."

	fallbackCoachReply = "I'm having trouble connecting to my brain right now. Try again later!"
)

const summarySystemPrompt = "You are an AI summarization assistant. " +
	"Generate a concise summary of the following conversation in 3-4 sentences."

const coachSystemPrompt = "Your name is Sophiya, and you are an advanced AI-powered Negotiation Coach. " +
	"You are assisting customers with real-time sentiment and intent analysis to negotiate prices " +
	"or discuss queries about properties. " +
	"You analyze live speech streams and text to detect sentiment changes in tone, language, and context. " +
	"You provide concise insights about the speaker's emotional state and intent. " +
	"Based on the sentiment and intent, respond with effective negotiation strategies and property recommendations. " +
	"Maintain a professional tone and aim to maximize customer satisfaction while protecting profitability."

// Generator — генератор ответов агента поверх chat completion сервиса.
//
// Контракт: любой сбой удаленного вызова превращается в фиксированную
// fallback-строку, ошибка возвращается только для логирования.
type Generator struct {
	client llm.Client
	model  string
}

func NewGenerator(client llm.Client, model string) *Generator {
	return &Generator{
		client: client,
		model:  strings.TrimSpace(model),
	}
}

// Reply produces a direct agent reply for one customer utterance,
// embedding the detected sentiment and intent in the system prompt.
func (g *Generator) Reply(ctx context.Context, customerText string, a analysis.Result) (string, error) {
	system := fmt.Sprintf(
		"You are a professional Real Estate Agent. "+
			"Customer Sentiment: %s "+
			"Customer Intent: %s "+
			"Provide a precise, helpful response.",
		a.Sentiment, a.Intent,
	)

	reply, err := g.complete(ctx, system, customerText, replyMaxTokens, 0)
	if err != nil {
		return FallbackReply, fmt.Errorf("response generation: %w", err)
	}
	return reply, nil
}

// Summarize asks for a short free-text summary of a rendered transcript.
func (g *Generator) Summarize(ctx context.Context, transcript string) (string, error) {
	summary, err := g.complete(ctx, summarySystemPrompt, transcript, summaryMaxTokens, 0)
	if err != nil {
		return FallbackSummary, fmt.Errorf("summary generation: %w", err)
	}
	return summary, nil
}

// Coach runs the negotiation-coach persona over a trailing history window.
func (g *Generator) Coach(ctx context.Context, history []llm.Message) (string, error) {
	if g.client == nil {
		return fallbackCoachReply, fmt.Errorf("llm client is not configured")
	}
	messages := append([]llm.Message{{Role: "system", Content: coachSystemPrompt}}, history...)
	reply, err := g.client.Complete(ctx, llm.Request{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   coachMaxTokens,
	})
	if err != nil {
		return fallbackCoachReply, fmt.Errorf("coach generation: %w", err)
	}
	return reply, nil
}

func (g *Generator) complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("llm client is not configured")
	}
	return g.client.Complete(ctx, llm.Request{
		Model: g.model,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}
