package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/viz-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/viz-backend/internal/auth"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

const totalMatchesHeader = "total_matches"

// ListVisualizations lists visualizations visible to the caller
func (h *Handler) ListVisualizations(c *gin.Context) {
	viewer := auth.Viewer(c)

	q, err := h.schemas.NewListQueryFromValues(c.Request.URL.Query())
	if err != nil {
		h.writeValidation(c, err)
		return
	}

	list, total, err := h.svc.List(c.Request.Context(), q, viewer)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header(totalMatchesHeader, strconv.Itoa(total))
	c.JSON(http.StatusOK, list.Raw(h.schemas.Codec()))
}

// GetVisualization returns the detailed view of one visualization
func (h *Handler) GetVisualization(c *gin.Context) {
	viewer := auth.Viewer(c)

	view, err := h.svc.Get(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.Raw(h.schemas.Codec()))
}

// ListSchemas returns every schema descriptor
func (h *Handler) ListSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Specs())
}

// GetSchema returns one schema descriptor by name
func (h *Handler) GetSchema(c *gin.Context) {
	spec, ok := domain.SpecByName(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown schema"})
		return
	}
	c.JSON(http.StatusOK, spec)
}

func (h *Handler) writeValidation(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		h.writeError(c, err)
		return
	}

	resp := validationResponse{
		Error:  "validation failed",
		Schema: verr.Schema,
		Detail: make([]errorDetail, 0, len(verr.Errors)),
	}
	for _, fe := range verr.Errors {
		resp.Detail = append(resp.Detail, errorDetail{
			Loc:   []any{"query", fe.Field},
			Type:  fe.Type,
			Msg:   fe.Message,
			Input: fe.Input,
		})
	}
	c.JSON(http.StatusBadRequest, resp)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "visualization not found"})
	case errors.Is(err, domain.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visualization id"})
	case errors.Is(err, domain.ErrConflictingFilters):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLoginRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "login required to list visualizations"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "visualization is not accessible to the current user"})
	default:
		h.logger.ErrorContext(c.Request.Context(), "visualization request failed",
			"request_id", middleware.GetRequestID(c.Request.Context()),
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
