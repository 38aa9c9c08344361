package http

import (
	"context"
	"log/slog"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

// VisualizationService is what the handlers need from the service layer.
type VisualizationService interface {
	List(ctx context.Context, q *domain.ListQuery, viewer *domain.Viewer) (domain.SummaryList, int, error)
	Get(ctx context.Context, token string, viewer *domain.Viewer) (*domain.DetailedView, error)
}

// Handler handles HTTP requests for visualizations
type Handler struct {
	svc     VisualizationService
	schemas *domain.Schemas
	logger  *slog.Logger
}

// New creates a new Handler
func New(svc VisualizationService, schemas *domain.Schemas, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:     svc,
		schemas: schemas,
		logger:  logger,
	}
}

// errorDetail is one entry of a validation failure response.
type errorDetail struct {
	Loc   []any  `json:"loc"`
	Type  string `json:"type"`
	Msg   string `json:"msg"`
	Input any    `json:"input,omitempty"`
}

type validationResponse struct {
	Error  string        `json:"error"`
	Schema string        `json:"schema"`
	Detail []errorDetail `json:"detail"`
}
