package app

import (
	"context"
	"errors"

	"chathdi/internal/model"
	"chathdi/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// DocumentStore is the slice of the document repository the services need.
type DocumentStore interface {
	Create(doc *model.Document) error
	ListVisibleToUser(userID string) ([]model.Document, error)
	GetByIDAndUserID(id, userID string) (*model.Document, error)
	FindVisibleByNameLike(userID, name string) (*model.Document, error)
	DeleteByIDAndUserID(id, userID string) error
}

type SectionStore interface {
	CreateBatches(sections []model.DocumentSection, batchSize int) error
	Search(ctx context.Context, userID string, embedding []float32, queryText string, threshold float64, count int) ([]repository.SectionMatch, error)
	ListByDocumentID(documentID string, limit int) ([]model.DocumentSection, error)
	DeleteByDocumentID(documentID string) error
}

type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
