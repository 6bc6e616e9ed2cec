package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/responses"
	"datadesigner/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	exportService  *services.ExportService
}

func NewProjectHandler(projectService *services.ProjectService, exportService *services.ExportService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		exportService:  exportService,
	}
}

// target returns the caller and the project named in the path.
func target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Not a UUID means no project can have it.
		responses.Error(c, apperrors.NotFound("project not found"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, projectID, true
}

// GetProject handles GET /api/v1/project/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := target(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, project, "Project retrieved successfully")
}

// SyncProject handles POST /api/v1/project/:id/sync
func (h *ProjectHandler) SyncProject(c *gin.Context) {
	userID, projectID, ok := target(c)
	if !ok {
		return
	}

	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, apperrors.Wrap(apperrors.KindValidation, "invalid snapshot", err))
		return
	}

	result, err := h.projectService.Sync(c.Request.Context(), userID, projectID, req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, result, "Project synced successfully")
}

// RenameProject handles PATCH /api/v1/project/:id
func (h *ProjectHandler) RenameProject(c *gin.Context) {
	userID, projectID, ok := target(c)
	if !ok {
		return
	}

	var req dto.ProjectNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, apperrors.Wrap(apperrors.KindValidation, "projectName is required", err))
		return
	}

	if err := h.projectService.Rename(c.Request.Context(), userID, projectID, req.ProjectName); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Project renamed successfully")
}

// DeleteProject handles DELETE /api/v1/project/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := target(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), userID, projectID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Project deleted successfully")
}

// ExportMermaid handles GET /api/v1/project/:id/export/mermaid
func (h *ProjectHandler) ExportMermaid(c *gin.Context) {
	userID, projectID, ok := target(c)
	if !ok {
		return
	}

	out, err := h.exportService.Mermaid(c.Request.Context(), userID, projectID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out))
}

// ExportPNG handles GET /api/v1/project/:id/export/png
func (h *ProjectHandler) ExportPNG(c *gin.Context) {
	userID, projectID, ok := target(c)
	if !ok {
		return
	}

	// Render into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.exportService.PNG(c.Request.Context(), userID, projectID, &buf); err != nil {
		responses.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
