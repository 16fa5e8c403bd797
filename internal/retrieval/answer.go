package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/tetraminz/estate_coach/internal/llm"
)

const (
	answerMaxTokens = 500

	// DefaultTopK - сколько фрагментов контекста подмешивается в запрос.
	DefaultTopK = 10

	// answerHistoryWindow bounds how much prior dialogue reaches the prompt.
	answerHistoryWindow = 6

	// FallbackAnswer is returned when generation fails after retrieval.
	FallbackAnswer = "I'm having trouble answering right now. Please try again."
)

const answerPromptTemplate = `You are a knowledgeable real estate assistant. Use the retrieved context to answer the question. If the context does not contain the answer, say so plainly instead of inventing details.

Conversation so far:
%s

Context:
%s

Question: %s

Answer:`

// Answer carries the generated text alongside the chunks it drew on.
type Answer struct {
	Text    string
	Sources []Document
}

// Answerer - генерация ответа по найденным фрагментам базы знаний.
type Answerer struct {
	retriever Retriever
	client    llm.Client
	model     string
	topK      int
}

func NewAnswerer(retriever Retriever, client llm.Client, model string, topK int) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{retriever: retriever, client: client, model: model, topK: topK}
}

// Ask retrieves context for the question and generates a grounded
// answer. History beyond the last exchanges is dropped. When
// generation fails the fallback text is returned together with the
// retrieved sources and the error, so callers can still show what was
// found.
func (a *Answerer) Ask(ctx context.Context, question string, history []llm.Message) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("empty question")
	}

	docs, err := a.retriever.Search(ctx, question, a.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}

	if len(history) > answerHistoryWindow {
		history = history[len(history)-answerHistoryWindow:]
	}

	prompt := fmt.Sprintf(answerPromptTemplate, renderHistory(history), renderContext(docs), question)
	reply, err := a.client.Complete(ctx, llm.Request{
		Model:     a.model,
		Messages:  []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens: answerMaxTokens,
	})
	if err != nil {
		return Answer{Text: FallbackAnswer, Sources: docs}, fmt.Errorf("generate answer: %w", err)
	}
	return Answer{Text: strings.TrimSpace(reply), Sources: docs}, nil
}

func renderHistory(history []llm.Message) string {
	if len(history) == 0 {
		return "(no prior conversation)"
	}
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderContext(docs []Document) string {
	if len(docs) == 0 {
		return "(no matching documents)"
	}
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, doc.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
