package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrProvisioningTimeout is returned when the remote index did not
// become ready within the configured deadline.
var ErrProvisioningTimeout = errors.New("index provisioning timed out")

const (
	// DefaultIndexName - имя индекса совпадает с моделью эмбеддингов
	// фиксированной размерности 384 (cosine), см. DefaultIndexConfig.
	DefaultIndexName = "documentindex"

	defaultControlURL = "https://api.pinecone.io"

	provisionPollStart = 1 * time.Second
	provisionPollMax   = 8 * time.Second
)

// IndexConfig describes the remote vector index to provision.
type IndexConfig struct {
	Name      string
	Dimension int
	Metric    string
	Cloud     string
	Region    string
}

// DefaultIndexConfig matches the embedding dimensionality in use.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Name:      DefaultIndexName,
		Dimension: 384,
		Metric:    "cosine",
		Cloud:     "aws",
		Region:    "us-east-1",
	}
}

// IndexClient talks to a Pinecone-style vector index service:
// administrative calls against the control plane, queries against the
// index data plane.
type IndexClient struct {
	apiKey     string
	controlURL string
	dataURL    string
	httpClient HTTPDoer
	sleep      func(time.Duration)
}

func NewIndexClient(apiKey, controlURL, dataURL string, httpClient HTTPDoer) *IndexClient {
	if strings.TrimSpace(controlURL) == "" {
		controlURL = defaultControlURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &IndexClient{
		apiKey:     apiKey,
		controlURL: strings.TrimRight(controlURL, "/"),
		dataURL:    strings.TrimRight(dataURL, "/"),
		httpClient: httpClient,
		sleep:      time.Sleep,
	}
}

// ListIndexes returns the names of existing indexes.
func (c *IndexClient) ListIndexes(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, c.controlURL+"/indexes", nil)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	var parsed struct {
		Indexes []struct {
			Name string `json:"name"`
		} `json:"indexes"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse indexes list: %w", err)
	}
	names := make([]string, 0, len(parsed.Indexes))
	for _, idx := range parsed.Indexes {
		names = append(names, idx.Name)
	}
	return names, nil
}

// CreateIndex issues the administrative create call.
func (c *IndexClient) CreateIndex(ctx context.Context, cfg IndexConfig) error {
	payload := map[string]any{
		"name":      cfg.Name,
		"dimension": cfg.Dimension,
		"metric":    cfg.Metric,
		"spec": map[string]any{
			"serverless": map[string]any{
				"cloud":  cfg.Cloud,
				"region": cfg.Region,
			},
		},
	}
	if _, err := c.do(ctx, http.MethodPost, c.controlURL+"/indexes", payload); err != nil {
		return fmt.Errorf("create index %s: %w", cfg.Name, err)
	}
	return nil
}

// DescribeIndex reports whether the index is ready to serve queries.
func (c *IndexClient) DescribeIndex(ctx context.Context, name string) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, c.controlURL+"/indexes/"+name, nil)
	if err != nil {
		return false, fmt.Errorf("describe index %s: %w", name, err)
	}
	var parsed struct {
		Status struct {
			Ready bool `json:"ready"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, fmt.Errorf("parse index status: %w", err)
	}
	return parsed.Status.Ready, nil
}

// EnsureIndex creates the named index if absent and waits for it to
// become ready, with backoff bounded by timeout. Idempotent.
func (c *IndexClient) EnsureIndex(ctx context.Context, cfg IndexConfig, timeout time.Duration) error {
	names, err := c.ListIndexes(ctx)
	if err != nil {
		return err
	}
	exists := false
	for _, name := range names {
		if name == cfg.Name {
			exists = true
			break
		}
	}
	if !exists {
		if err := c.CreateIndex(ctx, cfg); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(timeout)
	interval := provisionPollStart
	for {
		ready, err := c.DescribeIndex(ctx, cfg.Name)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if time.Now().Add(interval).After(deadline) {
			return fmt.Errorf("index %s after %s: %w", cfg.Name, timeout, ErrProvisioningTimeout)
		}
		c.sleep(interval)
		if interval < provisionPollMax {
			interval *= 2
		}
	}
}

// Upsert writes document chunks and their vectors to the index.
func (c *IndexClient) Upsert(ctx context.Context, docs []Document, vectors [][]float64) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("docs/vectors length mismatch: %d != %d", len(docs), len(vectors))
	}
	type vectorPayload struct {
		ID       string         `json:"id"`
		Values   []float64      `json:"values"`
		Metadata map[string]any `json:"metadata"`
	}
	payloadVectors := make([]vectorPayload, 0, len(docs))
	for i, doc := range docs {
		payloadVectors = append(payloadVectors, vectorPayload{
			ID:     doc.ID,
			Values: vectors[i],
			Metadata: map[string]any{
				"text":   doc.Text,
				"source": doc.Source,
			},
		})
	}
	if _, err := c.do(ctx, http.MethodPost, c.dataURL+"/vectors/upsert", map[string]any{
		"vectors": payloadVectors,
	}); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

// Query runs a similarity search and returns ranked chunks.
func (c *IndexClient) Query(ctx context.Context, vector []float64, k int) ([]Document, error) {
	if k <= 0 {
		k = 10
	}
	body, err := c.do(ctx, http.MethodPost, c.dataURL+"/query", map[string]any{
		"vector":          vector,
		"topK":            k,
		"includeMetadata": true,
	})
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	var parsed struct {
		Matches []struct {
			ID       string  `json:"id"`
			Score    float64 `json:"score"`
			Metadata struct {
				Text   string `json:"text"`
				Source string `json:"source"`
			} `json:"metadata"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse query response: %w", err)
	}

	docs := make([]Document, 0, len(parsed.Matches))
	for _, match := range parsed.Matches {
		docs = append(docs, Document{
			ID:     match.ID,
			Text:   match.Metadata.Text,
			Source: match.Metadata.Source,
			Score:  match.Score,
		})
	}
	return docs, nil
}

func (c *IndexClient) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// VectorRetriever embeds the query and searches the remote index.
type VectorRetriever struct {
	index    *IndexClient
	embedder Embedder
}

func NewVectorRetriever(index *IndexClient, embedder Embedder) *VectorRetriever {
	return &VectorRetriever{index: index, embedder: embedder}
}

func (r *VectorRetriever) Search(ctx context.Context, query string, k int) ([]Document, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.index.Query(ctx, vector, k)
}
