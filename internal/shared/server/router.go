package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/agreements"
	"contractreview-backend/internal/analysis"
	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/audit"
	"contractreview-backend/internal/rules"
	"contractreview-backend/internal/services/health"
	"contractreview-backend/internal/shared/config"
	"contractreview-backend/internal/shared/metrics"
	"contractreview-backend/internal/shared/server/middleware"
	"contractreview-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config            config.Config
	Health            *health.Service
	AgreementHandler  *agreements.Handler
	RuleHandler       *rules.Handler
	AnalysisHandler   *analysis.Handler
	AssessmentHandler *assessments.Handler
	AuditHandler      *audit.Handler
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
			DefaultGroup: "DEFAULT",
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/agreements/:id/analyze" {
					return "ANALYZE"
				}
				return "DEFAULT"
			},
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 10, Burst: 30},
				"ANALYZE": {Rate: 0.2, Burst: 3},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	deps.AgreementHandler.RegisterRoutes(api)
	deps.RuleHandler.RegisterRoutes(api)
	deps.AnalysisHandler.RegisterRoutes(api)
	deps.AssessmentHandler.RegisterRoutes(api)
	deps.AuditHandler.RegisterRoutes(api)

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
