package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/harbor-homecare-web/internal/chat"
	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	httpmiddleware "github.com/wolfman30/harbor-homecare-web/internal/http/middleware"
	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/internal/site"
	"github.com/wolfman30/harbor-homecare-web/internal/slots"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Site           *site.Site
	SlotsHandler   *slots.Handler
	ContactHandler *contact.Handler
	ChatHandler    *chat.Handler // nil disables /api/chat

	// RateLimiter guards /api/*. Nil disables rate limiting.
	RateLimiter        httpmiddleware.Limiter
	Metrics            *metrics.SiteMetrics
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Site == nil || cfg.SlotsHandler == nil || cfg.ContactHandler == nil {
		panic("router: site, slots and contact handlers are required")
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// One limiter budget covers the JSON API and the contact form post, since
	// both reach the CRM webhook.
	limited := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		limited = httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Metrics, cfg.Logger)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(limited)
		api.Use(httpmiddleware.NoStore)

		api.Get("/free-slots", cfg.SlotsHandler.FreeSlots)
		api.Post("/submit-contact", cfg.ContactHandler.Submit)
		if cfg.ChatHandler != nil {
			api.Post("/chat", cfg.ChatHandler.HandleMessage)
			api.Get("/chat/{sessionID}", cfg.ChatHandler.HandleHistory)
		}
		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		})
		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		})
	})

	// Pages
	s := cfg.Site
	r.Get("/", s.Home)
	r.Get("/about", s.About)
	r.Get("/services", s.Services)
	r.Get("/resources", s.Resources)
	r.Get("/contact", s.Contact)
	r.With(limited).Post("/contact", s.Contact)
	r.Get("/sitemap.xml", s.Sitemap)
	r.Get("/robots.txt", s.Robots)
	r.Handle("/static/*", http.StripPrefix("/static/", s.Static()))
	r.NotFound(s.NotFound)

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
