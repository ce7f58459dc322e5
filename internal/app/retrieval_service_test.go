package app

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// seedCorpus ingests a few documents through the real ingest path so the
// retrieval fixtures exercise the same chunk/embed plumbing.
func seedCorpus(t *testing.T) (*RetrievalService, *fakeDocStore, *fakeSectionStore, *fakeEmbedder) {
	t.Helper()
	docs := &fakeDocStore{}
	sections := &fakeSectionStore{docs: docs}
	embedder := newFakeEmbedder(64)
	ingest := NewIngestService(docs, sections, embedder, 200, 0, 50)

	corpus := map[string]string{
		"handbook.pdf": "Vacation policy grants twenty days of paid leave per year. Remote work requires manager approval before travel.",
		"recipes.txt":  "Combine flour sugar and butter then bake the shortbread at low heat until golden and crisp around the edges.",
		"notes.md":     "Quarterly revenue grew moderately while churn stayed flat across all customer segments this period.",
	}
	for name, content := range corpus {
		if _, err := ingest.Ingest(context.Background(), IngestInput{UserID: "user-1", Name: name, Content: content}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	retrieval := NewRetrievalService(docs, sections, embedder, 0.4, 5, 5)
	return retrieval, docs, sections, embedder
}

func TestAssembleContextSelfMatchIsTopHit(t *testing.T) {
	retrieval, _, sections, embedder := seedCorpus(t)

	query := sections.sections[0].Content
	embedding, err := embedder.Embed(context.Background(), query)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	matches, err := sections.Search(context.Background(), "user-1", embedding, query, 0.0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	if matches[0].Content != query {
		t.Fatalf("self-match is not the top hit: got %q", matches[0].Content)
	}
	if matches[0].Similarity < 0.999 {
		t.Fatalf("self-match similarity %f, want ~1", matches[0].Similarity)
	}

	result, err := retrieval.AssembleContext(context.Background(), "user-1", query)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !result.Found {
		t.Fatal("expected context for a verbatim chunk query")
	}
	if !strings.Contains(result.Suffix, query) {
		t.Fatal("context does not contain the matching chunk")
	}
}

func TestSearchThresholdIsMonotonic(t *testing.T) {
	_, _, sections, embedder := seedCorpus(t)

	query := "vacation and paid leave policy"
	embedding, err := embedder.Embed(context.Background(), query)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	prev := -1
	for _, threshold := range []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.01} {
		matches, err := sections.Search(context.Background(), "user-1", embedding, query, threshold, 100)
		if err != nil {
			t.Fatalf("search at %f: %v", threshold, err)
		}
		if prev >= 0 && len(matches) > prev {
			t.Fatalf("raising threshold to %f increased results: %d > %d", threshold, len(matches), prev)
		}
		prev = len(matches)
	}
	if prev != 0 {
		t.Fatalf("expected zero results above similarity 1, got %d", prev)
	}
}

func TestAssembleContextFormatsSourceLabels(t *testing.T) {
	retrieval, docs, sections, _ := seedCorpus(t)
	// Mark one document shared.
	for i := range docs.docs {
		if docs.docs[i].Name == "handbook.pdf" {
			docs.docs[i].IsShared = true
		}
	}

	query := sections.sections[0].Content
	result, err := retrieval.AssembleContext(context.Background(), "user-1", query)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(result.Suffix, contextHeader) || !strings.Contains(result.Suffix, contextFooter) {
		t.Fatal("context missing system delimiters")
	}
	if !strings.Contains(result.Suffix, "[COMPANY KNOWLEDGE BASE]") {
		t.Fatalf("shared source not labeled: %q", result.Suffix)
	}
}

func TestAssembleContextNoHitsNoFileRef(t *testing.T) {
	retrieval, _, _, _ := seedCorpus(t)

	result, err := retrieval.AssembleContext(context.Background(), "user-1", "completely unrelated astrophysics question")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if result.Found || result.Suffix != "" {
		t.Fatalf("expected empty context, got %+v", result)
	}
}

func TestAssembleContextFallbackDirectFetch(t *testing.T) {
	retrieval, _, _, _ := seedCorpus(t)

	// Unrelated wording, but the message names the file inline.
	query := "summarize this for me [PDF Indexed (Shared): handbook.pdf]"
	result, err := retrieval.AssembleContext(context.Background(), "user-1", query)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !result.Found {
		t.Fatal("expected fallback fetch to produce context")
	}
	if !strings.Contains(result.Suffix, "(Beginning of Document)") {
		t.Fatalf("fallback block not labeled: %q", result.Suffix)
	}
	if !strings.Contains(result.Suffix, "Vacation policy") {
		t.Fatal("fallback did not include document content")
	}
}

func TestAssembleContextFallbackDecodesEncodedName(t *testing.T) {
	docs := &fakeDocStore{}
	sections := &fakeSectionStore{docs: docs}
	embedder := newFakeEmbedder(32)
	ingest := NewIngestService(docs, sections, embedder, 200, 0, 50)
	if _, err := ingest.Ingest(context.Background(), IngestInput{
		UserID: "user-1", Name: "annual report.pdf",
		Content: "Numbers went up and to the right for the third consecutive year running.",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	retrieval := NewRetrievalService(docs, sections, embedder, 0.99, 5, 5)

	result, err := retrieval.AssembleContext(context.Background(), "user-1", "what is in [File: annual%20report.pdf]")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !result.Found {
		t.Fatal("expected fallback to resolve URL-encoded filename")
	}
}

func TestAssembleContextSurfacesSearchError(t *testing.T) {
	docs := &fakeDocStore{}
	sections := &fakeSectionStore{docs: docs, searchErr: errors.New("store offline")}
	retrieval := NewRetrievalService(docs, sections, newFakeEmbedder(8), 0.4, 5, 5)

	if _, err := retrieval.AssembleContext(context.Background(), "user-1", "anything"); err == nil {
		t.Fatal("expected search error to be returned, not swallowed")
	}
}
