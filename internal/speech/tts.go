package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultElevenBaseURL = "https://api.elevenlabs.io"
	defaultVoice         = "Nicole"
	defaultTTSModel      = "eleven_monolingual_v1"
)

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Synthesizer converts reply text into an audio stream via the
// ElevenLabs-style text-to-speech endpoint.
type Synthesizer struct {
	apiKey     string
	baseURL    string
	voice      string
	model      string
	httpClient HTTPDoer
}

func NewSynthesizer(apiKey, baseURL, voice string, httpClient HTTPDoer) *Synthesizer {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultElevenBaseURL
	}
	if strings.TrimSpace(voice) == "" {
		voice = defaultVoice
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Synthesizer{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		voice:      voice,
		model:      defaultTTSModel,
		httpClient: httpClient,
	}
}

// Synthesize returns the audio stream for text. The caller owns the
// returned reader and must close it.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is empty")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is empty")
	}

	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	url := s.baseURL + "/v1/text-to-speech/" + s.voice + "/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
