package routes

import (
	"github.com/gin-gonic/gin"

	"datadesigner/internal/handlers"
)

type ProjectRoutes struct {
	handler      *handlers.ProjectHandler
	authenticate gin.HandlerFunc
}

func NewProjectRoutes(handler *handlers.ProjectHandler, authenticate gin.HandlerFunc) *ProjectRoutes {
	return &ProjectRoutes{handler: handler, authenticate: authenticate}
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	project := router.Group("/project")
	project.Use(r.authenticate) // every project route acts on behalf of its owner
	{
		project.GET("/:id", r.handler.GetProject)
		project.PATCH("/:id", r.handler.RenameProject)
		project.DELETE("/:id", r.handler.DeleteProject)
		project.POST("/:id/sync", r.handler.SyncProject)
		project.GET("/:id/export/mermaid", r.handler.ExportMermaid)
		project.GET("/:id/export/png", r.handler.ExportPNG)
	}
}
