package transcribe

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
	defaultWitBaseURL = "https://api.wit.ai"
	witAPIVersion     = "20240304"

	// listenTimeout bounds one recognition round trip.
	listenTimeout = 5 * time.Second
)

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WitClient sends WAV clips to the wit.ai speech endpoint.
type WitClient struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
	now        func() time.Time
}

func NewWitClient(token, baseURL string, httpClient HTTPDoer) *WitClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultWitBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: listenTimeout}
	}
	return &WitClient{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Transcribe posts one audio clip and returns the recognized text.
// Empty recognition maps to ErrNoSpeech so callers can keep listening.
func (c *WitClient) Transcribe(ctx context.Context, audio []byte) (Result, error) {
	if strings.TrimSpace(c.token) == "" {
		return Result{}, fmt.Errorf("WIT_API_KEY is empty")
	}
	if len(audio) == 0 {
		return Result{}, ErrNoSpeech
	}

	ctx, cancel := context.WithTimeout(ctx, listenTimeout)
	defer cancel()

	url := c.baseURL + "/speech?v=" + witAPIVersion
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read speech response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("speech status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text := extractFinalText(body)
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrNoSpeech
	}

	return Result{
		Timestamp: nowTimestamp(c.now),
		Text:      strings.TrimSpace(text),
	}, nil
}

// extractFinalText handles both a single JSON object and the chunked
// multi-object stream wit.ai emits: the last object with is_final wins,
// otherwise the last non-empty text.
func extractFinalText(body []byte) string {
	decoder := json.NewDecoder(bytes.NewReader(body))
	lastText := ""
	for {
		var chunk struct {
			Text    string `json:"text"`
			IsFinal bool   `json:"is_final"`
		}
		if err := decoder.Decode(&chunk); err != nil {
			break
		}
		if chunk.IsFinal {
			return chunk.Text
		}
		if strings.TrimSpace(chunk.Text) != "" {
			lastText = chunk.Text
		}
	}
	return lastText
}
