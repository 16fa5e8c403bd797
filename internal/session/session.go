// Package session runs a live coaching call: it accepts customer
// utterances, classifies them, generates replies and keeps the
// in-order conversation history until teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tetraminz/estate_coach/internal/analysis"
	"github.com/tetraminz/estate_coach/internal/observability"
)

// Speakers as they appear in transcripts.
const (
	SpeakerCustomer = "Customer"
	SpeakerAI       = "AI"
)

// Session states.
const (
	StateIdle      = "idle"
	StateListening = "listening"
)

var (
	// ErrEmptyUsername - сессия без имени пользователя не создается.
	ErrEmptyUsername = errors.New("username is required")

	// ErrBacklogFull is returned when the input queue cannot accept
	// another utterance right now.
	ErrBacklogFull = errors.New("input backlog is full")
)

const timestampLayout = "2006-01-02 15:04:05"

// Utterance - одна реплика в истории разговора.
type Utterance struct {
	Timestamp string
	Speaker   string
	Text      string
	Sentiment string
	Intent    string
}

// Classifier tags a customer utterance with sentiment and intent.
type Classifier interface {
	Analyze(ctx context.Context, text string) (analysis.Result, error)
}

// Responder generates the assistant reply for a tagged utterance.
type Responder interface {
	Reply(ctx context.Context, customerText string, res analysis.Result) (string, error)
}

// Options tune a session. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	QueueSize    int
	Now          func() time.Time
	// OnExchange fires after every customer/assistant pair is
	// appended, with a copy of the current history.
	OnExchange func(history []Utterance)
}

// Session - явное состояние одного звонка: очередь входящих реплик,
// история в порядке поступления и фаза (idle/listening).
type Session struct {
	ID       string
	Username string

	classifier Classifier
	responder  Responder

	pollInterval time.Duration
	now          func() time.Time
	onExchange   func([]Utterance)

	queue chan string

	mu        sync.Mutex
	history   []Utterance
	state     string
	startedAt time.Time
}

func New(username string, classifier Classifier, responder Responder, opts Options) (*Session, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrEmptyUsername
	}
	if classifier == nil || responder == nil {
		return nil, fmt.Errorf("classifier and responder are required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 32
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		classifier:   classifier,
		responder:    responder,
		pollInterval: opts.PollInterval,
		now:          opts.Now,
		onExchange:   opts.OnExchange,
		queue:        make(chan string, opts.QueueSize),
		state:        StateIdle,
		startedAt:    opts.Now(),
	}, nil
}

// Offer hands an utterance to the session without blocking. When the
// backlog is full the caller gets ErrBacklogFull and decides whether
// to drop or retry.
func (s *Session) Offer(text string) error {
	select {
	case s.queue <- text:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Run drains the input queue until ctx is cancelled, processing
// utterances strictly in arrival order. Empty input is skipped
// without touching the history.
func (s *Session) Run(ctx context.Context) {
	s.setState(StateListening)
	defer s.setState(StateIdle)

	log := observability.LoggerFromContext(ctx).With("session_id", s.ID, "username", s.Username)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.queue:
			s.handle(ctx, log, text)
		case <-ticker.C:
			// keeps the loop responsive to cancellation between inputs
		}
	}
}

// Process runs one utterance synchronously, bypassing the queue.
// Used by the text-mode CLI where input is already serialized.
func (s *Session) Process(ctx context.Context, text string) (Utterance, bool) {
	log := observability.LoggerFromContext(ctx).With("session_id", s.ID, "username", s.Username)
	return s.handle(ctx, log, text)
}

func (s *Session) handle(ctx context.Context, log *slog.Logger, text string) (Utterance, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Utterance{}, false
	}

	res, err := s.classifier.Analyze(ctx, text)
	if err != nil {
		// classifier already returned usable defaults
		log.Warn("analysis degraded", "error", err)
	}
	reply, err := s.responder.Reply(ctx, text, res)
	if err != nil {
		log.Warn("reply degraded", "error", err)
	}

	stamp := s.now().Format(timestampLayout)
	customer := Utterance{
		Timestamp: stamp,
		Speaker:   SpeakerCustomer,
		Text:      text,
		Sentiment: res.Sentiment,
		Intent:    res.Intent,
	}
	assistant := Utterance{
		Timestamp: s.now().Format(timestampLayout),
		Speaker:   SpeakerAI,
		Text:      reply,
		Sentiment: analysis.SentimentNeutral,
		Intent:    analysis.IntentResponse,
	}

	s.mu.Lock()
	s.history = append(s.history, customer, assistant)
	snapshot := make([]Utterance, len(s.history))
	copy(snapshot, s.history)
	s.mu.Unlock()

	if s.onExchange != nil {
		s.onExchange(snapshot)
	}
	return assistant, true
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Utterance, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the history after teardown has persisted it.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// State reports the current phase.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt reports when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

func (s *Session) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
