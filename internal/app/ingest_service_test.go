package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chathdi/internal/ai"
)

func newIngestFixture(dimension int) (*IngestService, *fakeDocStore, *fakeSectionStore, *fakeEmbedder) {
	docs := &fakeDocStore{}
	sections := &fakeSectionStore{docs: docs}
	embedder := newFakeEmbedder(dimension)
	svc := NewIngestService(docs, sections, embedder, 1000, 200, 50)
	return svc, docs, sections, embedder
}

func loremText(length int) string {
	var b strings.Builder
	for b.Len() < length {
		b.WriteString("Lorem ipsum dolor sit amet consectetur adipiscing elit sed do. ")
	}
	return b.String()[:length]
}

func TestIngestStoresChunksWithSequenceIndex(t *testing.T) {
	svc, docs, sections, _ := newIngestFixture(64)

	result, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  "user-1",
		Name:    "spec.txt",
		Content: loremText(3000),
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if result.ChunkCount < 3 {
		t.Fatalf("expected >=3 chunks for 3000 chars, got %d", result.ChunkCount)
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning %q", result.Warning)
	}
	if len(docs.docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs.docs))
	}
	for i, sec := range sections.sections {
		if sec.SequenceIndex != i {
			t.Fatalf("section %d has sequence index %d", i, sec.SequenceIndex)
		}
		if sec.DocumentID != docs.docs[0].ID {
			t.Fatalf("section %d not linked to document", i)
		}
		if got := len(sec.Embedding.Slice()); got != 64 {
			t.Fatalf("section %d embedding has %d dims, want 64", i, got)
		}
	}
}

func TestIngestBatchesInserts(t *testing.T) {
	docs := &fakeDocStore{}
	sections := &fakeSectionStore{docs: docs}
	svc := NewIngestService(docs, sections, newFakeEmbedder(8), 100, 0, 3)

	if _, err := svc.Ingest(context.Background(), IngestInput{UserID: "u", Name: "big", Content: loremText(1000)}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if len(sections.batchSizes) < 2 {
		t.Fatalf("expected multiple insert batches, got %v", sections.batchSizes)
	}
	for i, size := range sections.batchSizes {
		if size > 3 {
			t.Fatalf("batch %d has %d rows, limit is 3", i, size)
		}
	}
}

func TestIngestSkipsFailedChunksAndContinues(t *testing.T) {
	svc, _, sections, embedder := newIngestFixture(16)
	// Poison a word that lands in the middle chunks only.
	embedder.failOn["poisonword"] = errors.New("model hiccup")
	content := strings.Repeat("Alpha beta gamma delta epsilon. ", 40) +
		"A poisonword sits right here. " +
		strings.Repeat("Zeta eta theta iota kappa. ", 40)

	result, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  "user-1",
		Name:    "flaky.txt",
		Content: content,
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if result.SkippedChunks == 0 {
		t.Fatal("expected some chunks to be skipped")
	}
	if result.ChunkCount == 0 {
		t.Fatal("expected healthy chunks to survive")
	}
	if result.ChunkCount != len(sections.sections) {
		t.Fatalf("chunk count %d does not match stored sections %d", result.ChunkCount, len(sections.sections))
	}
}

func TestIngestAllChunksFailedStillCreatesDocument(t *testing.T) {
	svc, docs, sections, embedder := newIngestFixture(16)
	embedder.failOn["Lorem"] = errors.New("model down")

	result, err := svc.Ingest(context.Background(), IngestInput{
		UserID:  "user-1",
		Name:    "doomed.txt",
		Content: loremText(500),
	})
	if err != nil {
		t.Fatalf("expected success with warning, got %v", err)
	}
	if result.Warning != WarningDocumentEmpty {
		t.Fatalf("expected warning %q, got %q", WarningDocumentEmpty, result.Warning)
	}
	if len(docs.docs) != 1 {
		t.Fatal("document record should exist even with no sections")
	}
	if len(sections.sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(sections.sections))
	}
}

func TestIngestDimensionOverflowAborts(t *testing.T) {
	svc, _, _, embedder := newIngestFixture(16)
	embedder.failOn["Lorem"] = ai.ErrDimensionOverflow

	if _, err := svc.Ingest(context.Background(), IngestInput{UserID: "u", Name: "n", Content: loremText(100)}); !errors.Is(err, ai.ErrDimensionOverflow) {
		t.Fatalf("expected dimension overflow to abort the upload, got %v", err)
	}
}

func TestIngestBatchFailureAbortsUpload(t *testing.T) {
	docs := &fakeDocStore{}
	sections := &fakeSectionStore{docs: docs, createErr: errors.New("payload too large")}
	svc := NewIngestService(docs, sections, newFakeEmbedder(8), 100, 0, 50)

	if _, err := svc.Ingest(context.Background(), IngestInput{UserID: "u", Name: "n", Content: loremText(500)}); err == nil {
		t.Fatal("expected batch failure to surface")
	}
}

func TestIngestRejectsEmptyContent(t *testing.T) {
	svc, _, _, _ := newIngestFixture(8)
	if _, err := svc.Ingest(context.Background(), IngestInput{UserID: "u", Name: "n", Content: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteDocumentRemovesSections(t *testing.T) {
	svc, docs, sections, _ := newIngestFixture(8)
	result, err := svc.Ingest(context.Background(), IngestInput{UserID: "u", Name: "gone.txt", Content: loremText(1500)})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if err := svc.DeleteDocument("u", result.Document.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(docs.docs) != 0 || len(sections.sections) != 0 {
		t.Fatalf("expected empty stores, got %d docs %d sections", len(docs.docs), len(sections.sections))
	}
}
