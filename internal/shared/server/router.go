package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping-buddy/internal/services/health"
	"shopping-buddy/internal/shared/config"
	"shopping-buddy/internal/shared/metrics"
	"shopping-buddy/internal/shared/server/middleware"
	"shopping-buddy/internal/shared/server/respond"
	"shopping-buddy/internal/storefront"
)

const submitGroup = "SUBMIT"

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config     config.Config
	Health     *health.Service
	Storefront *storefront.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigins),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: submitGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				submitGroup: {Rate: cfg.RateLimitPerSecond, Burst: cfg.RateLimitBurst},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.Status(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status()
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.Status(c, status, st)
	})

	if deps.Storefront != nil {
		deps.Storefront.RegisterPageRoutes(r)
		deps.Storefront.RegisterRoutes(api)
	}

	return r
}

// submitGroupFor rate-limits every POST, which is where backend calls happen.
func submitGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost {
		return submitGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
