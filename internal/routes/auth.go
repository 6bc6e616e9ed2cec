package routes

import (
	"github.com/gin-gonic/gin"

	"datadesigner/internal/handlers"
)

type AuthRoutes struct {
	handler       *handlers.AuthHandler
	googleHandler *handlers.GoogleAuthHandler
	authenticate  gin.HandlerFunc
}

// NewAuthRoutes wires the auth endpoints. googleHandler may be nil when
// Google sign-in is not configured.
func NewAuthRoutes(handler *handlers.AuthHandler, googleHandler *handlers.GoogleAuthHandler, authenticate gin.HandlerFunc) *AuthRoutes {
	return &AuthRoutes{handler: handler, googleHandler: googleHandler, authenticate: authenticate}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", r.handler.Register)
		auth.POST("/login", r.handler.Login)
		auth.POST("/logout", r.authenticate, r.handler.Logout)

		if r.googleHandler != nil {
			auth.GET("/google/login", r.googleHandler.Login)
			auth.GET("/google/callback", r.googleHandler.Callback)
		}
	}
}
