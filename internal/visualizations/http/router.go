package http

import "github.com/gin-gonic/gin"

// Register registers the visualization routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.ListVisualizations)
	rg.GET("/schemas", h.ListSchemas)
	rg.GET("/schemas/:name", h.GetSchema)
	rg.GET("/:id", h.GetVisualization)
}
