package routes

import (
	"github.com/gin-gonic/gin"

	"datadesigner/internal/handlers"
)

type UserRoutes struct {
	handler      *handlers.UserHandler
	authenticate gin.HandlerFunc
}

func NewUserRoutes(handler *handlers.UserHandler, authenticate gin.HandlerFunc) *UserRoutes {
	return &UserRoutes{handler: handler, authenticate: authenticate}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/user")
	user.Use(r.authenticate)
	{
		user.GET("/data", r.handler.GetData)
		user.POST("/new-project", r.handler.NewProject)
	}
}
