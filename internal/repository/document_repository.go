package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chathdi/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

// ListVisibleToUser returns the user's own documents plus shared ones.
func (r *DocumentRepository) ListVisibleToUser(userID string) ([]model.Document, error) {
	var list []model.Document
	if err := r.db.Where("user_id = ? OR is_shared", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) GetByIDAndUserID(id, userID string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// FindVisibleByNameLike loose-matches a document by name among documents the
// user can see. Used by the fallback direct fetch when vector search misses.
func (r *DocumentRepository) FindVisibleByNameLike(userID, name string) (*model.Document, error) {
	var doc model.Document
	err := r.db.
		Where("(user_id = ? OR is_shared) AND name ILIKE ?", userID, "%"+name+"%").
		Order("created_at DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find document by name failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) DeleteByIDAndUserID(id, userID string) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
