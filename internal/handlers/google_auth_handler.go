package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/responses"
	"datadesigner/internal/services"
	"datadesigner/internal/utils"
)

const oauthStateCookie = "oauth_state"

type GoogleAuthHandler struct {
	googleAuthService *services.GoogleAuthService
}

func NewGoogleAuthHandler(googleAuthService *services.GoogleAuthService) *GoogleAuthHandler {
	return &GoogleAuthHandler{googleAuthService: googleAuthService}
}

// Login redirects to Google's consent page with a state value that the
// callback checks against a cookie.
func (h *GoogleAuthHandler) Login(c *gin.Context) {
	state, err := utils.GenerateOAuthState()
	if err != nil {
		responses.Error(c, apperrors.Internal(err))
		return
	}
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleAuthService.AuthCodeURL(state))
}

func (h *GoogleAuthHandler) Callback(c *gin.Context) {
	queryState := c.Query("state")
	if queryState == "" {
		responses.Error(c, apperrors.Validation("missing state parameter"))
		return
	}

	cookieState, err := c.Cookie(oauthStateCookie)
	if err != nil {
		responses.Error(c, apperrors.Validation("missing state cookie"))
		return
	}
	if queryState != cookieState {
		responses.Error(c, apperrors.Forbidden("state mismatch"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		responses.Error(c, apperrors.Validation("missing code"))
		return
	}

	res, err := h.googleAuthService.Callback(c.Request.Context(), code)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, res, "Logged in successfully")
}
