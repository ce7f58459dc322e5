package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"chathdi/internal/model"
)

// SectionMatch is one hybrid-search hit. Similarity blends vector distance
// with keyword rank and stays within [0,1].
type SectionMatch struct {
	Content      string  `json:"content"`
	DocumentName string  `json:"document_name"`
	IsShared     bool    `json:"is_shared"`
	Similarity   float64 `json:"similarity"`
}

// Weights for blending cosine similarity with keyword rank. Keyword matching
// recovers recall on short or keyword-heavy queries where the embedding model
// underperforms.
const (
	vectorWeight  = 0.8
	keywordWeight = 0.2
)

type SectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// CreateBatches inserts sections in fixed-size batches to respect backend
// payload limits. Any batch failure aborts the whole insert.
func (r *SectionRepository) CreateBatches(sections []model.DocumentSection, batchSize int) error {
	if len(sections) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	for i := 0; i < len(sections); i += batchSize {
		end := i + batchSize
		if end > len(sections) {
			end = len(sections)
		}
		batch := sections[i:end]
		if err := r.db.Create(&batch).Error; err != nil {
			return fmt.Errorf("create section batch at offset %d failed: %w", i, err)
		}
	}
	return nil
}

// Search runs a hybrid nearest-neighbor query over sections visible to the
// user: cosine similarity on the embedding blended with a keyword rank on the
// same query text. Rows below threshold are dropped; an empty result is not an
// error.
func (r *SectionRepository) Search(ctx context.Context, userID string, embedding []float32, queryText string, threshold float64, count int) ([]SectionMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}
	if count <= 0 {
		count = 5
	}

	vec := pgvector.NewVector(embedding)
	var matches []SectionMatch
	err := r.db.WithContext(ctx).Raw(`
		SELECT ds.content,
		       d.name AS document_name,
		       d.is_shared,
		       LEAST(1.0,
		             ? * (1 - (ds.embedding <=> ?)) +
		             ? * ts_rank(to_tsvector('simple', ds.content), websearch_to_tsquery('simple', ?))
		       ) AS similarity
		FROM document_sections ds
		JOIN documents d ON d.id = ds.document_id
		WHERE (d.user_id = ? OR d.is_shared)
		  AND ds.embedding IS NOT NULL
		  AND LEAST(1.0,
		            ? * (1 - (ds.embedding <=> ?)) +
		            ? * ts_rank(to_tsvector('simple', ds.content), websearch_to_tsquery('simple', ?))
		      ) >= ?
		ORDER BY similarity DESC
		LIMIT ?`,
		vectorWeight, vec, keywordWeight, queryText,
		userID,
		vectorWeight, vec, keywordWeight, queryText,
		threshold, count,
	).Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("hybrid section search failed: %w", err)
	}
	return matches, nil
}

// ListByDocumentID returns the first limit sections of a document in chunk
// order, for the direct-fetch fallback.
func (r *SectionRepository) ListByDocumentID(documentID string, limit int) ([]model.DocumentSection, error) {
	if limit <= 0 {
		limit = 5
	}
	var sections []model.DocumentSection
	err := r.db.
		Where("document_id = ?", documentID).
		Order("sequence_index ASC").
		Limit(limit).
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("list sections by document failed: %w", err)
	}
	return sections, nil
}

func (r *SectionRepository) DeleteByDocumentID(documentID string) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.DocumentSection{}).Error; err != nil {
		return fmt.Errorf("delete sections by document failed: %w", err)
	}
	return nil
}
