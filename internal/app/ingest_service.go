package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"chathdi/internal/ai"
	"chathdi/internal/chunker"
	"chathdi/internal/model"
)

var ErrDocumentNotFound = errors.New("document not found")

// WarningDocumentEmpty marks an upload that produced a document record but no
// sections. Better to have the record than nothing.
const WarningDocumentEmpty = "document empty"

type IngestService struct {
	docStore     DocumentStore
	sectionStore SectionStore
	embedder     TextEmbedder
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

func NewIngestService(docStore DocumentStore, sectionStore SectionStore, embedder TextEmbedder, chunkSize, chunkOverlap, batchSize int) *IngestService {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &IngestService{
		docStore:     docStore,
		sectionStore: sectionStore,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    batchSize,
	}
}

type IngestInput struct {
	UserID   string
	Name     string
	Content  string
	IsShared bool
}

type IngestResult struct {
	Document      model.Document `json:"document"`
	ChunkCount    int            `json:"chunk_count"`
	SkippedChunks int            `json:"skipped_chunks"`
	Warning       string         `json:"warning,omitempty"`
}

// Ingest chunks the content, embeds each chunk, and persists the document
// plus its sections in batches. A chunk whose embedding fails is logged and
// dropped; the rest of the batch continues. A store write failure aborts the
// whole upload.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.UserID == "" {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Untitled"
	}

	chunks := chunker.Chunk(content, s.chunkSize, s.chunkOverlap)

	doc := &model.Document{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Name:      name,
		IsShared:  input.IsShared,
		CreatedAt: time.Now(),
	}
	if err := s.docStore.Create(doc); err != nil {
		return nil, err
	}

	sections := make([]model.DocumentSection, 0, len(chunks))
	skipped := 0
	for i, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			if errors.Is(err, ai.ErrDimensionOverflow) {
				return nil, err
			}
			log.Printf("embed chunk %d of %q failed, dropping it: %v", i, name, err)
			skipped++
			continue
		}
		sections = append(sections, model.DocumentSection{
			DocumentID:    doc.ID,
			SequenceIndex: i,
			Content:       chunk,
			Embedding:     pgvector.NewVector(embedding),
		})
	}

	if len(sections) == 0 {
		log.Printf("no sections to store for document %q", name)
		return &IngestResult{Document: *doc, SkippedChunks: skipped, Warning: WarningDocumentEmpty}, nil
	}

	if err := s.sectionStore.CreateBatches(sections, s.batchSize); err != nil {
		return nil, err
	}

	return &IngestResult{
		Document:      *doc,
		ChunkCount:    len(sections),
		SkippedChunks: skipped,
	}, nil
}

func (s *IngestService) ListDocuments(userID string) ([]model.Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.docStore.ListVisibleToUser(userID)
}

// DeleteDocument removes a document and its sections. Only the owner may
// delete, shared or not.
func (s *IngestService) DeleteDocument(userID, documentID string) error {
	if userID == "" || documentID == "" {
		return ErrInvalidInput
	}
	doc, err := s.docStore.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.sectionStore.DeleteByDocumentID(doc.ID); err != nil {
		return err
	}
	return s.docStore.DeleteByIDAndUserID(doc.ID, userID)
}
