package leadconnector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

var tracer = otel.Tracer("harbor.internal.leadconnector")

const (
	defaultBaseURL  = "https://services.leadconnectorhq.com"
	defaultVersion  = "2021-07-28"
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 4 << 20
)

// Config configures a Client.
type Config struct {
	APIKey     string
	Version    string
	CalendarID string
	BaseURL    string
	Timezone   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.SiteMetrics
	Logger     *logging.Logger
}

// Client wraps the calendar free-slots endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	version    string
	calendarID string
	location   *time.Location
	metrics    *metrics.SiteMetrics
	logger     *logging.Logger
}

// NewClient constructs a LeadConnector client. A missing API key is not an
// error here; calls fail with ErrNotConfigured instead.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultVersion
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			cfg.Logger.Warn("leadconnector: unknown timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		}
	}
	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		version:    version,
		calendarID: strings.TrimSpace(cfg.CalendarID),
		location:   loc,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Location is the calendar's local timezone.
func (c *Client) Location() *time.Location {
	return c.location
}

// FreeSlots fetches free slots for q. A 2xx answer is returned unchanged; a
// non-2xx answer comes back as *APIError.
func (c *Client) FreeSlots(ctx context.Context, q FreeSlotsQuery) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	calendarID := strings.TrimSpace(q.CalendarID)
	if calendarID == "" {
		calendarID = c.calendarID
	}

	ctx, span := tracer.Start(ctx, "leadconnector.free_slots")
	defer span.End()
	span.SetAttributes(attribute.String("leadconnector.calendar_id", calendarID))

	params := url.Values{}
	params.Set("startDate", strconv.FormatInt(q.StartDateMillis, 10))
	params.Set("endDate", strconv.FormatInt(q.EndDateMillis, 10))
	path := fmt.Sprintf("/calendars/%s/free-slots", url.PathEscape(calendarID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("leadconnector: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Version", c.version)
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(metrics.UpstreamCalendar, "error", time.Since(start).Seconds())
		span.RecordError(err)
		c.logger.Error("leadconnector: request failed", "error", err, "path", path)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.metrics.ObserveUpstream(metrics.UpstreamCalendar, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if !json.Valid(body) {
		c.metrics.ObserveUpstream(metrics.UpstreamCalendar, "error", time.Since(start).Seconds())
		c.logger.Warn("leadconnector: non-JSON response", "status", resp.StatusCode, "body", truncate(string(body), 300))
		return nil, fmt.Errorf("%w: response is not JSON", ErrTransport)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveUpstream(metrics.UpstreamCalendar, "rejected", time.Since(start).Seconds())
		c.logger.Warn("leadconnector API non-2xx response", "status", resp.StatusCode, "path", path, "body", truncate(string(body), 300))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	}

	c.metrics.ObserveUpstream(metrics.UpstreamCalendar, "ok", time.Since(start).Seconds())
	return &Response{StatusCode: resp.StatusCode, Body: json.RawMessage(body)}, nil
}

// DaySlots lists the free start times on the calendar-local day containing day.
func (c *Client) DaySlots(ctx context.Context, day time.Time) ([]time.Time, error) {
	local := day.In(c.location)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location)
	endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Millisecond)

	resp, err := c.FreeSlots(ctx, FreeSlotsQuery{
		StartDateMillis: startOfDay.UnixMilli(),
		EndDateMillis:   endOfDay.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	slots, err := ParseFreeSlots(resp.Body)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		slots[i] = slots[i].In(c.location)
	}
	return slots, nil
}

// upstreamMessage picks the "message" field out of an error body, falling
// back to a generic text.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch m := payload.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				if s, ok := p.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return "Upstream error"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
