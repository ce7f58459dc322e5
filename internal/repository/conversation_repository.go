package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chathdi/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Upsert writes the full conversation snapshot, replacing the message log.
func (r *ConversationRepository) Upsert(conv *model.Conversation) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "messages", "is_pinned", "project_id", "updated_at",
		}),
	}).Create(conv).Error
	if err != nil {
		return fmt.Errorf("upsert conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListByUserID(userID string) ([]model.Conversation, error) {
	var list []model.Conversation
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return list, nil
}

func (r *ConversationRepository) GetByIDAndUserID(id, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) DeleteByIDAndUserID(id, userID string) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Conversation{}).Error; err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	return nil
}

// UnlinkProject clears project_id on every conversation in the project,
// before the project row itself is removed.
func (r *ConversationRepository) UnlinkProject(projectID string) error {
	err := r.db.Model(&model.Conversation{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error
	if err != nil {
		return fmt.Errorf("unlink conversations from project failed: %w", err)
	}
	return nil
}
