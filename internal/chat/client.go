package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

var tracer = otel.Tracer("harbor.internal.chat")

const (
	defaultTimeout  = 15 * time.Second
	maxReplyBody    = 1 << 20
	webhookBodyLogN = 300
)

// Replier answers one visitor message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// ClientConfig configures the webhook client.
type ClientConfig struct {
	WebhookURL string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.SiteMetrics
	Logger     *logging.Logger
}

// Client forwards visitor messages to the chat automation webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
	metrics    *metrics.SiteMetrics
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		httpClient: client,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

type webhookRequest struct {
	Message string `json:"Message"`
}

// Reply posts message to the webhook and returns the extracted reply text.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "chat.webhook")
	defer span.End()

	payload, err := json.Marshal(webhookRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("chat: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(metrics.UpstreamChat, "error", time.Since(start).Seconds())
		span.RecordError(err)
		return "", fmt.Errorf("chat: webhook request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBody))
	if err != nil {
		c.metrics.ObserveUpstream(metrics.UpstreamChat, "error", time.Since(start).Seconds())
		return "", fmt.Errorf("chat: read reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveUpstream(metrics.UpstreamChat, "rejected", time.Since(start).Seconds())
		msg := string(body)
		if len(msg) > webhookBodyLogN {
			msg = msg[:webhookBodyLogN]
		}
		c.logger.Warn("chat webhook non-2xx response", "status", resp.StatusCode, "body", msg)
		return "", &WebhookError{StatusCode: resp.StatusCode}
	}

	reply, err := ExtractReply(body)
	if err != nil {
		c.metrics.ObserveUpstream(metrics.UpstreamChat, "error", time.Since(start).Seconds())
		return "", err
	}
	c.metrics.ObserveUpstream(metrics.UpstreamChat, "ok", time.Since(start).Seconds())
	return reply, nil
}
