package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datadesigner/internal/handlers"
)

// Handlers groups everything RegisterRoutes mounts. Google is optional.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Google       *handlers.GoogleAuthHandler
	User         *handlers.UserHandler
	Project      *handlers.ProjectHandler
	Authenticate gin.HandlerFunc
}

func RegisterRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api/v1")

	NewAuthRoutes(h.Auth, h.Google, h.Authenticate).RegisterRoutes(api)
	NewUserRoutes(h.User, h.Authenticate).RegisterRoutes(api)
	NewProjectRoutes(h.Project, h.Authenticate).RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
