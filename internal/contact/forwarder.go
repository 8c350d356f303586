package contact

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

var tracer = otel.Tracer("harbor.internal.contact")

const (
	defaultTimeout  = 15 * time.Second
	maxUpstreamBody = 1 << 20
)

// Notifier is told about every accepted submission, forwarded or simulated.
type Notifier interface {
	NotifySubmission(ctx context.Context, sub Submission) error
}

// Result describes a successful forward.
type Result struct {
	Simulated bool
	Data      json.RawMessage
}

// ForwarderConfig configures a Forwarder. An empty TargetURL simulates success.
type ForwarderConfig struct {
	TargetURL  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Notifier   Notifier
	Metrics    *metrics.SiteMetrics
	Logger     *logging.Logger
}

// Forwarder posts validated submissions to the CRM webhook.
type Forwarder struct {
	targetURL  string
	httpClient *http.Client
	notifier   Notifier
	metrics    *metrics.SiteMetrics
	logger     *logging.Logger
}

// NewForwarder builds a forwarder from cfg.
func NewForwarder(cfg ForwarderConfig) *Forwarder {
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
	return &Forwarder{
		targetURL:  strings.TrimSpace(cfg.TargetURL),
		httpClient: client,
		notifier:   cfg.Notifier,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Simulated reports whether submissions are accepted without forwarding.
func (f *Forwarder) Simulated() bool {
	return f.targetURL == ""
}

// Forward sends sub to the target. Non-2xx answers come back as *UpstreamError.
func (f *Forwarder) Forward(ctx context.Context, sub Submission) (*Result, error) {
	if f.Simulated() {
		f.logger.Info("contact: no submission target configured, simulating success",
			"appointment_date", sub.AppointmentDate,
		)
		f.metrics.ObserveSubmission("simulated")
		f.notify(ctx, sub)
		return &Result{Simulated: true}, nil
	}

	ctx, span := tracer.Start(ctx, "contact.forward")
	defer span.End()

	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("contact: marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.targetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("contact: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.metrics.ObserveUpstream(metrics.UpstreamContact, "error", time.Since(start).Seconds())
		f.metrics.ObserveSubmission("error")
		span.RecordError(err)
		f.logger.Error("contact: upstream request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		f.metrics.ObserveUpstream(metrics.UpstreamContact, "error", time.Since(start).Seconds())
		f.metrics.ObserveSubmission("error")
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.metrics.ObserveUpstream(metrics.UpstreamContact, "rejected", time.Since(start).Seconds())
		f.metrics.ObserveSubmission("rejected")
		f.logger.Warn("contact: upstream rejected submission", "status", resp.StatusCode)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	f.metrics.ObserveUpstream(metrics.UpstreamContact, "ok", time.Since(start).Seconds())
	f.metrics.ObserveSubmission("forwarded")
	f.logger.Info("contact: submission forwarded", "status", resp.StatusCode)

	data := json.RawMessage(`{"ok":true}`)
	if json.Valid(body) {
		data = json.RawMessage(body)
	}
	f.notify(ctx, sub)
	return &Result{Data: data}, nil
}

// Submit forwards sub and only reports whether it was accepted.
func (f *Forwarder) Submit(ctx context.Context, sub Submission) error {
	_, err := f.Forward(ctx, sub)
	return err
}

func (f *Forwarder) notify(ctx context.Context, sub Submission) {
	if f.notifier == nil {
		return
	}
	if err := f.notifier.NotifySubmission(ctx, sub); err != nil {
		f.logger.Warn("contact: office notification failed", "error", err)
	}
}
