package app

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"chathdi/internal/model"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectStore interface {
	Create(project *model.Project) error
	ListByUserID(userID string) ([]model.Project, error)
	GetByIDAndUserID(id, userID string) (*model.Project, error)
	DeleteByIDAndUserID(id, userID string) error
}

type ConversationUnlinker interface {
	UnlinkProject(projectID string) error
}

type ProjectService struct {
	projectStore ProjectStore
	unlinker     ConversationUnlinker
}

func NewProjectService(projectStore ProjectStore, unlinker ConversationUnlinker) *ProjectService {
	return &ProjectService{projectStore: projectStore, unlinker: unlinker}
}

type CreateProjectInput struct {
	UserID string
	Name   string
	Icon   string
	Color  string
}

func (s *ProjectService) CreateProject(input CreateProjectInput) (*model.Project, error) {
	if input.UserID == "" {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	project := &model.Project{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Name:      name,
		Icon:      input.Icon,
		Color:     input.Color,
		CreatedAt: time.Now(),
	}
	if err := s.projectStore.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListProjects(userID string) ([]model.Project, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.projectStore.ListByUserID(userID)
}

// DeleteProject unlinks the project's conversations first so they survive as
// standalone chats, then removes the project row.
func (s *ProjectService) DeleteProject(userID, projectID string) error {
	if userID == "" || projectID == "" {
		return ErrInvalidInput
	}
	project, err := s.projectStore.GetByIDAndUserID(projectID, userID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if err := s.unlinker.UnlinkProject(projectID); err != nil {
		return err
	}
	return s.projectStore.DeleteByIDAndUserID(projectID, userID)
}
