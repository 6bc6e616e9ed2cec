package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/middlewares"
	"datadesigner/internal/responses"
	"datadesigner/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		responses.Error(c, apperrors.Unauthorized("unauthorized"))
	}
	return userID, ok
}

// GetData handles GET /api/v1/user/data
func (h *UserHandler) GetData(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	data, err := h.userService.GetUserData(c.Request.Context(), userID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, data, "User data retrieved successfully")
}

// NewProject handles POST /api/v1/user/new-project
func (h *UserHandler) NewProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ProjectNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, apperrors.Wrap(apperrors.KindValidation, "projectName is required", err))
		return
	}

	projectID, err := h.userService.CreateProject(c.Request.Context(), userID, req.ProjectName)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusCreated, dto.NewProjectResponse{ProjectID: projectID.String()}, "Project created successfully")
}
