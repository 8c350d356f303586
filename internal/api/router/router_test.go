package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/harbor-homecare-web/internal/chat"
	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	httpmiddleware "github.com/wolfman30/harbor-homecare-web/internal/http/middleware"
	"github.com/wolfman30/harbor-homecare-web/internal/leadconnector"
	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/internal/session"
	"github.com/wolfman30/harbor-homecare-web/internal/site"
	"github.com/wolfman30/harbor-homecare-web/internal/slots"
	"github.com/wolfman30/harbor-homecare-web/internal/wizard"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

type testOptions struct {
	limiter httpmiddleware.Limiter
	origins []string
	noChat  bool
}

func newTestRouter(t *testing.T, opts testOptions) http.Handler {
	t.Helper()

	logger := logging.New("error")
	reg := prometheus.NewRegistry()
	m := metrics.NewSiteMetrics(reg)

	chatUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"We serve all of Edmonton."}`))
	}))
	t.Cleanup(chatUpstream.Close)

	forwarder := contact.NewForwarder(contact.ForwarderConfig{Metrics: m, Logger: logger})
	wizards := session.NewStore(time.Hour, func() *wizard.Wizard {
		return wizard.New(forwarder, wizard.WithMetrics(m), wizard.WithLogger(logger))
	})
	s, err := site.New(site.Config{BaseURL: "https://example.test", Wizards: wizards, Logger: logger})
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}

	cfg := &Config{
		Logger:             logger,
		Site:               s,
		SlotsHandler:       slots.NewHandler(leadconnector.NewClient(leadconnector.Config{Logger: logger}), logger),
		ContactHandler:     contact.NewHandler(forwarder, logger),
		RateLimiter:        opts.limiter,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: opts.origins,
	}
	if !opts.noChat {
		replier := chat.NewClient(chat.ClientConfig{WebhookURL: chatUpstream.URL, Logger: logger})
		widgets := session.NewStore(time.Hour, func() *chat.Widget {
			return chat.NewWidget(replier, chat.WithMetrics(m), chat.WithLogger(logger))
		})
		cfg.ChatHandler = chat.NewHandler(widgets, logger)
	}
	return New(cfg)
}

func serve(h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	rr := serve(router, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterPages(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	for _, path := range []string{"/", "/about", "/services", "/resources", "/contact"} {
		rr := serve(router, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: expected html, got %q", path, ct)
		}
	}

	rr := serve(router, http.MethodGet, "/does-not-exist", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Errorf("expected custom 404 page")
	}
}

func TestRouterContactPost(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("action=next"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty step, got %d", rr.Code)
	}
}

func TestRouterSitemapRobotsAndStatic(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	rr := serve(router, http.MethodGet, "/sitemap.xml", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<loc>https://example.test/about</loc>") {
		t.Fatalf("unexpected sitemap: %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(router, http.MethodGet, "/robots.txt", nil)
	if !strings.Contains(rr.Body.String(), "Sitemap: https://example.test/sitemap.xml") {
		t.Fatalf("unexpected robots.txt: %s", rr.Body.String())
	}

	rr = serve(router, http.MethodGet, "/static/site.css", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected static asset, got %d", rr.Code)
	}
}

func TestRouterFreeSlotsValidatesQuery(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	rr := serve(router, http.MethodGet, "/api/free-slots", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}

	rr = serve(router, http.MethodGet, "/api/free-slots?startDate=1&endDate=2", nil)
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), "Server not configured") {
		t.Fatalf("expected not configured, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestRouterSubmitContactSimulated(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	body := []byte(`{"firstName":"Ada","lastName":"Lovelace","dateOfBirth":"1950-12-10","email":"ada@example.ca",
		"countryCode":"CA","phone":"(780) 555-0100","appointmentDate":"2026-10-21",
		"appointmentTime":"09:00","message":"Weekday companionship care."}`)
	rr := serve(router, http.MethodPost, "/api/submit-contact", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["ok"] != true || resp["simulated"] != true {
		t.Fatalf("unexpected response: %v", resp)
	}

	rr = serve(router, http.MethodGet, "/api/submit-contact", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestRouterChat(t *testing.T) {
	router := newTestRouter(t, testOptions{})

	rr := serve(router, http.MethodPost, "/api/chat", []byte(`{"message":"Which areas do you cover?"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID string `json:"sessionId"`
		Reply     string `json:"reply"`
		Messages  []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "We serve all of Edmonton." {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}

	rr = serve(router, http.MethodGet, "/api/chat/"+resp.SessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected history, got %d", rr.Code)
	}

	rr = serve(router, http.MethodGet, "/api/chat/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rr.Code)
	}
}

func TestRouterChatDisabled(t *testing.T) {
	router := newTestRouter(t, testOptions{noChat: true})

	rr := serve(router, http.MethodPost, "/api/chat", []byte(`{"message":"hi"}`))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when chat is disabled, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON 404 under /api, got %q", ct)
	}
}

func TestRouterRateLimitsAPI(t *testing.T) {
	router := newTestRouter(t, testOptions{limiter: httpmiddleware.NewMemoryLimiter(60, 1)})

	first := serve(router, http.MethodGet, "/api/free-slots", nil)
	if first.Code == http.StatusTooManyRequests {
		t.Fatalf("first request should not be limited")
	}
	second := serve(router, http.MethodGet, "/api/free-slots", nil)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}

	// Pages are not rate limited.
	if rr := serve(router, http.MethodGet, "/", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected page to bypass limiter, got %d", rr.Code)
	}

	rr := serve(router, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rr.Body.String(), "harbor_http_rate_limited_total 1") {
		t.Fatalf("expected rate limit metric, got:\n%s", rr.Body.String())
	}
}

func TestRouterRateLimitsContactFormPost(t *testing.T) {
	router := newTestRouter(t, testOptions{limiter: httpmiddleware.NewMemoryLimiter(60, 1)})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("action=submit"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	if first := post(); first.Code == http.StatusTooManyRequests {
		t.Fatalf("first form post should not be limited")
	}
	if second := post(); second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for second form post, got %d", second.Code)
	}
	// The JSON API shares the same per-client budget.
	if rr := serve(router, http.MethodPost, "/api/submit-contact", []byte(`{}`)); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected shared budget with /api, got %d", rr.Code)
	}
	if rr := serve(router, http.MethodGet, "/contact", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected contact page load to bypass limiter, got %d", rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, testOptions{origins: []string{"https://example.test"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/submit-contact", nil)
	req.Header.Set("Origin", "https://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.test" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestNewPanicsWithoutHandlers(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(&Config{})
}
