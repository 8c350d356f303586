package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/harbor-homecare-web/internal/api/router"
	"github.com/wolfman30/harbor-homecare-web/internal/chat"
	appconfig "github.com/wolfman30/harbor-homecare-web/internal/config"
	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	"github.com/wolfman30/harbor-homecare-web/internal/leadconnector"
	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/internal/session"
	"github.com/wolfman30/harbor-homecare-web/internal/site"
	"github.com/wolfman30/harbor-homecare-web/internal/slots"
	"github.com/wolfman30/harbor-homecare-web/internal/wizard"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

// Services is everything the web server needs, wired from config.
type Services struct {
	Router  *router.Config
	Wizards *session.Store[*wizard.Wizard]
	Chats   *session.Store[*chat.Widget] // nil when chat is disabled
	Redis   *redis.Client                // nil without REDIS_ADDR
}

// Close releases external connections.
func (s *Services) Close() error {
	if s == nil || s.Redis == nil {
		return nil
	}
	return s.Redis.Close()
}

// BuildServices wires handlers, upstream clients and session stores.
// Background janitors run until ctx is done. A nil registry uses the
// Prometheus default.
func BuildServices(ctx context.Context, cfg *appconfig.Config, reg *prometheus.Registry, logger *logging.Logger) (*Services, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		m              *metrics.SiteMetrics
		metricsHandler http.Handler
	)
	if reg != nil {
		m = metrics.NewSiteMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	} else {
		m = metrics.NewSiteMetrics(nil)
		metricsHandler = promhttp.Handler()
	}

	calendar := leadconnector.NewClient(leadconnector.Config{
		APIKey:     cfg.LeadConnectorAPIKey,
		Version:    cfg.LeadConnectorVersion,
		CalendarID: cfg.LeadConnectorCalendarID,
		BaseURL:    cfg.LeadConnectorBaseURL,
		Timezone:   cfg.LeadConnectorTimezone,
		Timeout:    cfg.UpstreamTimeout,
		Metrics:    m,
		Logger:     logger.Component("leadconnector"),
	})
	if !calendar.Configured() {
		logger.Warn("LEADCONNECTOR_API_KEY not set; free-slots requests will fail")
	}

	forwarderCfg := contact.ForwarderConfig{
		TargetURL: cfg.ContactSubmissionURL,
		Timeout:   cfg.UpstreamTimeout,
		Metrics:   m,
		Logger:    logger.Component("contact"),
	}
	if notifier := BuildOfficeNotifier(cfg, logger.Component("notify")); notifier != nil {
		forwarderCfg.Notifier = notifier
	}
	forwarder := contact.NewForwarder(forwarderCfg)
	if forwarder.Simulated() {
		logger.Warn("CONTACT_SUBMISSION_URL not set; contact submissions are simulated")
	}

	wizardLogger := logger.Component("wizard")
	wizards := session.NewStore(cfg.SessionTTL, func() *wizard.Wizard {
		return wizard.New(forwarder,
			wizard.WithMetrics(m),
			wizard.WithLogger(wizardLogger),
			wizard.WithBannerDuration(cfg.SuccessBannerDuration),
		)
	})
	go wizards.Run(ctx, 0)

	var (
		chats       *session.Store[*chat.Widget]
		chatHandler *chat.Handler
	)
	if webhook := strings.TrimSpace(cfg.ChatWebhookURL); webhook != "" {
		chatLogger := logger.Component("chat")
		replier := chat.NewClient(chat.ClientConfig{
			WebhookURL: webhook,
			Timeout:    cfg.UpstreamTimeout,
			Metrics:    m,
			Logger:     chatLogger,
		})
		chats = session.NewStore(cfg.SessionTTL, func() *chat.Widget {
			return chat.NewWidget(replier, chat.WithMetrics(m), chat.WithLogger(chatLogger))
		})
		go chats.Run(ctx, 0)
		chatHandler = chat.NewHandler(chats, chatLogger)
	} else {
		logger.Warn("CHAT_WEBHOOK_URL empty; chat widget disabled")
	}

	siteCfg := site.Config{
		BaseURL:      cfg.SiteBaseURL,
		Wizards:      wizards,
		ChatEnabled:  chatHandler != nil,
		SecureCookie: cfg.IsProduction(),
		Logger:       logger.Component("site"),
	}
	if calendar.Configured() {
		siteCfg.Slots = calendar
	}
	pages, err := site.New(siteCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: build site: %w", err)
	}

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	limiter := BuildRateLimiter(ctx, cfg, redisClient, logger)

	return &Services{
		Router: &router.Config{
			Logger:             logger,
			Site:               pages,
			SlotsHandler:       slots.NewHandler(calendar, logger.Component("slots")),
			ContactHandler:     contact.NewHandler(forwarder, logger.Component("contact")),
			ChatHandler:        chatHandler,
			RateLimiter:        limiter,
			Metrics:            m,
			MetricsHandler:     metricsHandler,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		Wizards: wizards,
		Chats:   chats,
		Redis:   redisClient,
	}, nil
}
