package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profile-report/internal/reports"
	"profile-report/internal/services/health"
	"profile-report/internal/shared/config"
	"profile-report/internal/shared/metrics"
	"profile-report/internal/shared/server/middleware"
	"profile-report/internal/shared/server/respond"
)

// RouterDeps are the handlers the router mounts.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	ReportHandler *reports.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.SetHTMLTemplate(reports.PageTemplate())

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	r.GET("/api/v1/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	authed := r.Group("/")
	authed.Use(middleware.Auth(cfg.Env, []byte(cfg.JWTSecret)))

	api := authed.Group("/api/v1")
	api.GET("/me", meHandler(cfg.Env))
	deps.ReportHandler.RegisterRoutes(api)
	deps.ReportHandler.RegisterPageRoutes(authed)

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
