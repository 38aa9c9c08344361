package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/viz-backend/internal/ids"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

type stubService struct{}

func (stubService) List(context.Context, *domain.ListQuery, *domain.Viewer) (domain.SummaryList, int, error) {
	return domain.SummaryList{}, 0, nil
}

func (stubService) Get(context.Context, string, *domain.Viewer) (*domain.DetailedView, error) {
	return nil, domain.ErrNotFound
}

func newTestRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	codec, err := ids.New("router-secret")
	require.NoError(t, err)
	return BuildRouter(RouterDeps{
		ServiceName:    "viz-backend",
		Version:        "test",
		Environment:    "test",
		CORSOrigins:    origins,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		Visualizations: stubService{},
		Schemas:        domain.NewSchemas(codec),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestBuildRouter_Routes(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/api/v1/visualizations?show_published=true", http.StatusOK},
		{"/api/v1/visualizations/schemas", http.StatusOK},
		{"/api/v1/visualizations/schemas/Summary", http.StatusOK},
		{"/api/v1/visualizations/abc", http.StatusNotFound},
		{"/api/v1/nothing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		})
	}
}

func TestBuildRouter_CORS(t *testing.T) {
	router := newTestRouter(t, []string{"https://viz.example"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visualizations?show_published=true", nil)
	req.Header.Set("Origin", "https://viz.example")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://viz.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rr.Header().Get("Access-Control-Expose-Headers")), "total_matches")
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
	assert.True(t, corsConfig(nil).AllowAllOrigins)

	cfg := corsConfig([]string{"https://a.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
}
