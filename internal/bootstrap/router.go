package bootstrap

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/viz-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/viz-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/viz-backend/internal/auth"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
	vizhttp "github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Environment    string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	DB    httpapi.Pinger
	Cache httpapi.Pinger

	Visualizations vizhttp.VisualizationService
	Schemas        *domain.Schemas
	Logger         *slog.Logger
}

func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", auth.UserHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{"total_matches", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	SetGinMode(dep.Environment)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Cache)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.NewRateLimiter(dep.RateLimitRPS, dep.RateLimitBurst).Middleware())
	api.Use(auth.OptionalViewer(dep.Schemas.Codec()))

	vizHandler := vizhttp.New(dep.Visualizations, dep.Schemas, dep.Logger)
	vizHandler.Register(api.Group("/visualizations"))

	return r
}
