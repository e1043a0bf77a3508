package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/auth"
	"docextract-backend/internal/documents"
	"docextract-backend/internal/extraction"
	"docextract-backend/internal/services/health"
	"docextract-backend/internal/shared/config"
	"docextract-backend/internal/shared/metrics"
	"docextract-backend/internal/shared/server/middleware"
	"docextract-backend/internal/shared/server/respond"
	"docextract-backend/internal/users"
)

const (
	apiPrefix = "/api/v1"

	rateGroupAuth    = "AUTH"
	rateGroupExtract = "EXTRACT"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps lists the handlers and collaborators the router wires together.
type RouterDeps struct {
	Config            config.Config
	Authenticator     middleware.Authenticator
	UsersService      *users.Service
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	DocumentsHandler  *documents.Handler
	ExtractionHandler *extraction.Handler
	RateLimiter       *middleware.RateLimiter
	Health            *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Authenticator, apiPrefix+"/auth/", apiPrefix+"/health", "/metrics"),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(api)
	}

	protected := api.Group("", users.ResolveAccount(deps.UsersService))
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(protected)
	}
	if deps.ExtractionHandler != nil {
		deps.ExtractionHandler.RegisterRoutes(protected)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(protected)
	}

	return r
}

// rateLimitConfig gives extraction a fifth of the default budget.
func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rps := deps.Config.RateLimitRPS
	burst := deps.Config.RateLimitBurst
	extractBurst := burst / 5
	if extractBurst < 1 && burst > 0 {
		extractBurst = 1
	}
	return middleware.RateLimitConfig{
		Limiter:      deps.RateLimiter,
		DefaultGroup: rateGroupDefault,
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDefault: {Rate: rps, Burst: burst},
			rateGroupAuth:    {Rate: rps, Burst: burst},
			rateGroupExtract: {Rate: rps / 5, Burst: extractBurst},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.Request.URL.Path
			switch {
			case strings.HasPrefix(path, apiPrefix+"/auth/"):
				return rateGroupAuth
			case c.Request.Method == http.MethodPost && path == apiPrefix+"/documents/extract":
				return rateGroupExtract
			default:
				return rateGroupDefault
			}
		},
	}
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
