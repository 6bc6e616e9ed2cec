package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/middlewares"
	"datadesigner/internal/responses"
	"datadesigner/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, apperrors.Wrap(apperrors.KindValidation, "please provide a username, email and password", err))
		return
	}

	userID, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusCreated, dto.RegisterResponse{UserID: userID.String()}, "User registered successfully")
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, apperrors.Wrap(apperrors.KindValidation, "invalid login request", err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, res, "Logged in successfully")
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middlewares.Token(c)); err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}
