package ai

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

// ErrDimensionOverflow is returned when the model's native output is wider
// than the configured dimension. Truncating would silently corrupt similarity
// scores, so this is a hard error.
var ErrDimensionOverflow = errors.New("embedding exceeds configured dimension")

// Embedder calls an OpenAI-compatible feature-extraction endpoint and
// right-pads every vector with zeros to a fixed dimension, so stored section
// embeddings and query embeddings always match the vector column width.
// Construct one at the composition root and inject it where needed.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	httpClient *http.Client
}

func NewEmbedder(baseURL, apiKey, model string, dimension int) *Embedder {
	return &Embedder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Dimension returns the fixed output width of Embed.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns the embedding for text, always exactly Dimension() long.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	reqBody := map[string]interface{}{
		"model": e.model,
		"input": text,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build embedding request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	return e.pad(parsed.Data[0].Embedding)
}

func (e *Embedder) pad(vec []float32) ([]float32, error) {
	if len(vec) > e.dimension {
		return nil, fmt.Errorf("%w: model produced %d, configured %d", ErrDimensionOverflow, len(vec), e.dimension)
	}
	if len(vec) == e.dimension {
		return vec, nil
	}
	padded := make([]float32, e.dimension)
	copy(padded, vec)
	return padded, nil
}
