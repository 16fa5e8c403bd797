package transcribe

import (
	"context"
	"errors"
	"time"
)

// ErrNoSpeech is reported when the service recognized no speech in the
// clip. Soft failure: listening loops must continue, not terminate.
var ErrNoSpeech = errors.New("no speech detected")

// Result is one recognized utterance with its capture timestamp.
type Result struct {
	Timestamp string
	Text      string
}

// Transcriber turns a captured audio clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (Result, error)
}

const timestampLayout = "2006-01-02 15:04:05"

func nowTimestamp(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return now().Format(timestampLayout)
}
