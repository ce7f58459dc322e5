package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chathdi/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return fmt.Errorf("create project failed: %w", err)
	}
	return nil
}

func (r *ProjectRepository) ListByUserID(userID string) ([]model.Project, error) {
	var list []model.Project
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	return list, nil
}

func (r *ProjectRepository) GetByIDAndUserID(id, userID string) (*model.Project, error) {
	var project model.Project
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) DeleteByIDAndUserID(id, userID string) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Project{}).Error; err != nil {
		return fmt.Errorf("delete project failed: %w", err)
	}
	return nil
}
