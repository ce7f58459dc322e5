package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": vector}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedPadsToConfiguredDimension(t *testing.T) {
	native := make([]float32, 384)
	for i := range native {
		native[i] = 0.5
	}
	srv := embeddingServer(t, native)
	defer srv.Close()

	emb := NewEmbedder(srv.URL, "", "test-model", 1536)
	vec, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 1536 {
		t.Fatalf("expected 1536 dims, got %d", len(vec))
	}
	if vec[383] != 0.5 {
		t.Fatalf("native values lost: %v", vec[383])
	}
	for i := 384; i < 1536; i++ {
		if vec[i] != 0 {
			t.Fatalf("padding at %d is %v, want 0", i, vec[i])
		}
	}
}

func TestEmbedExactDimensionPassesThrough(t *testing.T) {
	native := make([]float32, 8)
	native[7] = 1
	srv := embeddingServer(t, native)
	defer srv.Close()

	emb := NewEmbedder(srv.URL, "", "test-model", 8)
	vec, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 8 || vec[7] != 1 {
		t.Fatalf("unexpected vector %v", vec)
	}
}

func TestEmbedRejectsOverflowingDimension(t *testing.T) {
	srv := embeddingServer(t, make([]float32, 16))
	defer srv.Close()

	emb := NewEmbedder(srv.URL, "", "test-model", 8)
	if _, err := emb.Embed(context.Background(), "hello"); !errors.Is(err, ErrDimensionOverflow) {
		t.Fatalf("expected ErrDimensionOverflow, got %v", err)
	}
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	emb := NewEmbedder("http://127.0.0.1:1", "", "test-model", 8)
	if _, err := emb.Embed(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestEmbedSurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	emb := NewEmbedder(srv.URL, "", "test-model", 8)
	if _, err := emb.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from 503 response")
	}
}
