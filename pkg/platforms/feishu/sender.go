package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/feishu-notifier/observability"
	"github.com/kart-io/feishu-notifier/pkg/config"
	"github.com/kart-io/feishu-notifier/pkg/errors"
	"github.com/kart-io/feishu-notifier/pkg/history"
	"github.com/kart-io/feishu-notifier/pkg/logger"
	"github.com/kart-io/feishu-notifier/pkg/ratelimit"
)

// PlatformName identifies this platform in logs, errors and metrics.
const PlatformName = "feishu"

// MsgWebhookNotConfigured is the error message returned when no webhook URL is set.
const MsgWebhookNotConfigured = "webhook not configured"

// Notifier sends signed post messages to one Feishu webhook.
// It is safe for concurrent use.
type Notifier struct {
	config    config.FeishuConfig
	signer    *Signer
	client    *HTTPClient
	logger    logger.Logger
	clock     func() time.Time
	telemetry *observability.TelemetryProvider
	recorder  history.Recorder
	limiter   ratelimit.Limiter

	httpClient *http.Client
}

// Option configures a Notifier
type Option func(*Notifier)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithHTTPClient replaces the HTTP client; its own timeout applies.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.httpClient = c }
}

// WithClock replaces the time source used for signing.
func WithClock(clock func() time.Time) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithTelemetry enables tracing and metrics through tp.
func WithTelemetry(tp *observability.TelemetryProvider) Option {
	return func(n *Notifier) { n.telemetry = tp }
}

// WithRecorder records every outcome to r.
func WithRecorder(r history.Recorder) Option {
	return func(n *Notifier) { n.recorder = r }
}

// WithRateLimiter makes Send wait on l before each request.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(n *Notifier) { n.limiter = l }
}

// New creates a notifier for cfg. A missing webhook URL is reported by Send,
// not here.
func New(cfg config.FeishuConfig, opts ...Option) *Notifier {
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	n := &Notifier{
		config: cfg,
		signer: NewSigner(cfg.Secret),
		logger: logger.Discard,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.client = NewHTTPClient(n.httpClient, cfg.Timeout, cfg.UserAgent, n.logger)
	return n
}

// SendNotification sends one notification with a throwaway notifier.
func SendNotification(ctx context.Context, cfg config.FeishuConfig, title, content string, opts ...Option) *Result {
	n := New(cfg, opts...)
	defer func() { _ = n.Close() }()
	return n.Send(ctx, title, content)
}

// Name returns the platform name
func (n *Notifier) Name() string {
	return PlatformName
}

// Send delivers title and content as a post message. It never panics on
// remote or transport failures; inspect the Result.
func (n *Notifier) Send(ctx context.Context, title, content string) *Result {
	start := time.Now()
	ctx, span := n.telemetry.TraceSend(ctx, PlatformName)
	defer span.End()

	result := n.send(ctx, title, content)
	result.Duration = time.Since(start)

	if result.OK() {
		n.telemetry.SetSpanSuccess(span)
		n.telemetry.RecordSent(ctx, PlatformName, result.Duration)
	} else {
		n.telemetry.SetSpanError(span, result.AsError())
		n.telemetry.RecordFailed(ctx, PlatformName, result.Duration, result.errorType())
	}

	n.record(ctx, title, result)
	return result
}

func (n *Notifier) send(ctx context.Context, title, content string) *Result {
	if !n.config.HasWebhook() {
		n.logger.Error("Feishu webhook not configured")
		return &Result{Err: errors.New(errors.ErrMissingWebhook, MsgWebhookNotConfigured).WithPlatform(PlatformName)}
	}

	n.logger.Info("Sending Feishu notification",
		"webhook", MaskWebhookURL(n.config.WebhookURL),
		"has_secret", n.config.HasSecret())

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			n.logger.Warn("Feishu send rate limited", "error", err)
			return &Result{Err: errors.Wrap(err, errors.ErrRateLimited, "wait for rate limit").WithPlatform(PlatformName)}
		}
	}

	timestamp, sign := n.signer.SignAt(n.clock())
	msg := NewPostMessage(n.config.Locale, title, content).WithSignature(timestamp, sign)
	result := &Result{Timestamp: timestamp}

	payload, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("Failed to marshal Feishu message", "error", err)
		result.Err = errors.Wrap(err, errors.ErrSerializationFailed, "marshal message")
		return result
	}
	if view, err := json.Marshal(msg.logView()); err == nil {
		n.logger.Info("Feishu request payload", "timestamp", timestamp, "payload", string(view))
	}

	status, body, err := n.client.Post(ctx, n.config.WebhookURL, payload)
	result.StatusCode = status
	result.Raw = string(body)
	if err != nil {
		n.logger.Error("Feishu notification failed", "error", err, "response", rawOrNone(body))
		result.Err = err
		return result
	}

	n.logger.Info("Feishu response", "statusCode", status, "body", result.Raw)

	data, err := decodeResponse(body)
	if err != nil {
		n.logger.Error("Feishu notification failed", "error", err, "response", rawOrNone(body))
		result.Err = errors.Wrap(err, errors.ErrDeserializationFailed, "decode response").
			WithMetadata("status_code", status)
		return result
	}
	if data == nil {
		n.logger.Error("Feishu notification failed", "error", "null response", "response", rawOrNone(body))
		result.Err = errors.New(errors.ErrDeserializationFailed, "response is not a JSON object").
			WithMetadata("status_code", status)
		return result
	}
	result.Response = data

	if result.OK() {
		n.logger.Info("Feishu notification sent", "statusCode", status)
	} else {
		code, _ := result.Code()
		n.logger.Error("Feishu rejected notification", "statusCode", status, "code", code, "msg", result.Msg())
	}
	return result
}

func (n *Notifier) record(ctx context.Context, title string, result *Result) {
	if n.recorder == nil {
		return
	}

	entry := history.Entry{
		Time:       n.clock(),
		Title:      title,
		OK:         result.OK(),
		StatusCode: result.StatusCode,
		Msg:        result.Msg(),
		Duration:   result.Duration,
	}
	if code, ok := result.Code(); ok {
		entry.Code = &code
	}
	if result.Err != nil {
		entry.Error = errors.GetErrorMessage(result.Err)
	}

	if err := n.recorder.Record(ctx, entry); err != nil {
		n.logger.Warn("Failed to record notification history", "error", err)
	}
}

// IsHealthy reports whether the notifier can attempt a send.
func (n *Notifier) IsHealthy(context.Context) error {
	if !n.config.HasWebhook() {
		return errors.New(errors.ErrMissingWebhook, MsgWebhookNotConfigured).WithPlatform(PlatformName)
	}
	return nil
}

// Close releases idle HTTP connections.
func (n *Notifier) Close() error {
	return n.client.Close()
}

func rawOrNone(body []byte) string {
	if len(body) == 0 {
		return "(no response)"
	}
	return string(body)
}

// decodeResponse parses body into a JSON object, keeping numbers as
// json.Number so large integers survive unchanged.
func decodeResponse(body []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return data, nil
}
