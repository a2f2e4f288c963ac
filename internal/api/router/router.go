package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-tools/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-tools/internal/http/middleware"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// MCPBasePath is where the MCP SSE transport is mounted.
const MCPBasePath = "/mcp"

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	ToolsHandler   *handlers.ToolsHandler
	MCPHandler     http.Handler
	MetricsHandler http.Handler

	// Optional HMAC secret; empty leaves tool endpoints open.
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.ToolsHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Tool endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		protected.Use(httpmiddleware.BearerJWT(cfg.JWTSecret))

		protected.Route("/tools", func(r chi.Router) {
			r.Get("/", cfg.ToolsHandler.ListTools)
			r.Post("/{name}", cfg.ToolsHandler.InvokeTool)
		})
		if cfg.MCPHandler != nil {
			protected.Mount(MCPBasePath, cfg.MCPHandler)
		}
	})

	return r
}
