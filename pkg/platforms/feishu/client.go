package feishu

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/kart-io/feishu-notifier/pkg/errors"
	"github.com/kart-io/feishu-notifier/pkg/logger"
)

// DefaultTimeout bounds a single webhook request when none is configured.
const DefaultTimeout = 30 * time.Second

// HTTPClient posts JSON payloads to a webhook. It makes exactly one attempt.
type HTTPClient struct {
	client    *http.Client
	logger    logger.Logger
	userAgent string
}

// createHTTPClient creates an HTTP client with the given total timeout
func createHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewHTTPClient wraps client, or builds one with timeout when client is nil.
func NewHTTPClient(client *http.Client, timeout time.Duration, userAgent string, log logger.Logger) *HTTPClient {
	if client == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = createHTTPClient(timeout)
	}
	return &HTTPClient{client: client, logger: log, userAgent: userAgent}
}

// Post sends payload to webhookURL and returns the status code and raw body.
// A non-2xx status is not an error; the caller inspects it.
func (h *HTTPClient) Post(ctx context.Context, webhookURL string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		var urlErr *url.Error
		if stderrors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, nil, errors.Wrap(err, errors.ErrInvalidConfig, "create request")
	}

	req.Header.Set("Content-Type", "application/json")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, body, errors.Wrap(err, errors.ErrConnectionFailed, "read response body")
	}

	h.logger.Debug("Feishu response headers", "statusCode", resp.StatusCode, "headers", resp.Header)
	return resp.StatusCode, body, nil
}

// Close releases idle connections.
func (h *HTTPClient) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// classifyTransportError drops the *url.Error wrapper so the webhook URL
// does not end up in messages or logs.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrap(err, errors.ErrNetworkTimeout, "send request")
	}
	return errors.Wrap(err, errors.ErrConnectionFailed, "send request")
}
