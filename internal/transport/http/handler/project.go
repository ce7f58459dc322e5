package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chathdi/internal/app"
	"chathdi/internal/transport/http/response"
)

type ProjectHandler struct {
	projectService *app.ProjectService
}

type CreateProjectRequest struct {
	Name  string `json:"name" binding:"required,max=128"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func NewProjectHandler(projectService *app.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	project, err := h.projectService.CreateProject(app.CreateProjectInput{
		UserID: userID,
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create project failed")
		}
		return
	}
	response.OK(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	projects, err := h.projectService.ListProjects(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list projects failed")
		return
	}
	response.OK(c, projects)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	projectID := c.Param("id")
	if projectID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid project id")
		return
	}
	if err := h.projectService.DeleteProject(userID, projectID); err != nil {
		switch {
		case errors.Is(err, app.ErrProjectNotFound):
			response.Error(c, http.StatusNotFound, response.CodeProjectNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete project failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_project_id": projectID})
}
