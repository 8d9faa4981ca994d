package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispute-backend/internal/analysis"
	"dispute-backend/internal/facts"
	"dispute-backend/internal/services/health"
	"dispute-backend/internal/shared/config"
	"dispute-backend/internal/shared/metrics"
	"dispute-backend/internal/shared/server/middleware"
	"dispute-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up. Construction of
// services happens in bootstrap; the router only attaches routes.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	FactsHandler    *facts.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 5, Burst: 10},
				"POLLING": {Rate: 20, Burst: 40},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/analyses/:id/progress" {
					return "POLLING"
				}
				return "DEFAULT"
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.FactsHandler != nil {
		deps.FactsHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
