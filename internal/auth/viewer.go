package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

const (
	UserHeader = "X-User-Id"
	CtxViewer  = "viewer"
)

// OptionalViewer resolves the caller from X-User-Id without enforcing auth.
// - If the header is missing the request continues anonymously
// - If it does not decode the request is rejected with 400
// - Otherwise a *domain.Viewer is stored in the Gin context
func OptionalViewer(codec domain.IDCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(UserHeader))
		if token == "" {
			c.Next()
			return
		}

		id, err := codec.Decode(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		c.Set(CtxViewer, &domain.Viewer{UserID: id})
		c.Next()
	}
}

// Viewer returns the caller stored by OptionalViewer, or nil when anonymous.
func Viewer(c *gin.Context) *domain.Viewer {
	v, ok := c.Get(CtxViewer)
	if !ok {
		return nil
	}
	viewer, _ := v.(*domain.Viewer)
	return viewer
}
