package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// DocumentSection stores one chunk of a document together with its embedding.
// SequenceIndex preserves the original chunk order so positional fetches do not
// depend on insertion order at the store level.
type DocumentSection struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DocumentID    string          `gorm:"type:uuid;not null;index" json:"document_id"`
	SequenceIndex int             `gorm:"not null" json:"sequence_index"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Embedding     pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}
