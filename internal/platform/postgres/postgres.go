package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func New(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get postgres sql db failed: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres failed: %w", err)
	}

	return db, nil
}

// EnsureVectorExtension installs pgvector. It must run before AutoMigrate so
// the vector column type exists when the sections table is created.
func EnsureVectorExtension(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension failed: %w", err)
	}
	return nil
}

// EnsureSearchIndexes creates the indexes the hybrid search query depends on.
// It runs after AutoMigrate, which creates the document_sections table and
// its vector column.
func EnsureSearchIndexes(db *gorm.DB) error {
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_document_sections_embedding ON document_sections USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)").Error; err != nil {
		return fmt.Errorf("create embedding index failed: %w", err)
	}
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_document_sections_content_tsv ON document_sections USING gin (to_tsvector('simple', content))").Error; err != nil {
		return fmt.Errorf("create content tsvector index failed: %w", err)
	}
	return nil
}
