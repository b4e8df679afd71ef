package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipe-management/backend/internal/api"
	"github.com/pageza/recipe-management/backend/internal/middleware"
	"github.com/pageza/recipe-management/backend/internal/service"
)

// Dependencies are the collaborators the HTTP surface needs.
type Dependencies struct {
	Recipes service.IRecipeService
	// Checks are probed by /health.
	Checks map[string]api.Checker
	// WriteLimiter guards mutating recipe routes when set.
	WriteLimiter *middleware.RateLimiter
	// Origins overrides the default CORS origins.
	Origins []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.CORS(deps.Origins...),
		middleware.Actor(),
		middleware.Logger(),
		middleware.Metrics(),
	)
	router.NoRoute(middleware.NotFoundHandler)

	health := api.NewHealthHandler(deps.Checks)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health", health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var writeMiddleware []gin.HandlerFunc
	if deps.WriteLimiter != nil {
		writeMiddleware = append(writeMiddleware, deps.WriteLimiter.Middleware())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	api.NewRecipeHandler(deps.Recipes).RegisterRoutes(v1, writeMiddleware...)

	return router, nil
}
