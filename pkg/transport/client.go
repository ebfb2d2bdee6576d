package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/fragment"
	"github.com/goliatone/go-formsubmit/pkg/payload"
)

const (
	// DefaultResultID is the id of the result region in pages and responses.
	DefaultResultID = "resultMessage"
	// RequestIDHeader carries a per-submission identifier.
	RequestIDHeader = "X-Request-ID"

	tracerName = "github.com/goliatone/go-formsubmit/pkg/transport"
)

// Client posts submissions and fetches pages.
type Client struct {
	http           *http.Client
	timeout        time.Duration
	resultID       string
	sanitizer      fragment.Sanitizer
	validator      Validator
	logger         *zap.Logger
	tracerProvider trace.TracerProvider
	requestID      func() string
}

// New constructs a Client. Without options it uses a fresh http.Client with
// no timeout, the default sanitizer and a no-op logger.
func New(options ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		resultID:  DefaultResultID,
		sanitizer: fragment.Default(),
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.timeout > 0 && c.http.Timeout == 0 {
		clone := *c.http
		clone.Timeout = c.timeout
		c.http = &clone
	}
	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}
	c.logger = c.logger.Named("transport")
	return c
}

// FetchPage downloads the page a controller attaches to.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if pageURL == "" {
		return nil, errors.New("transport: page url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: build page request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: fetch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transport: fetch page: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read page: %w", err)
	}
	return data, nil
}

// Submit posts an encoded payload to target and classifies the outcome. It
// never returns an error: every failure is carried in the Result.
func (c *Client) Submit(ctx context.Context, target string, enc payload.Encoded) Result {
	requestID := c.requestID()
	ctx, span := c.tracerProvider.Tracer(tracerName).Start(ctx, "formsubmit.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodPost),
			attribute.String("url.full", target),
			attribute.String("formsubmit.request_id", requestID),
		),
	)
	defer span.End()

	res := c.submit(ctx, target, requestID, enc)
	res.RequestID = requestID

	span.SetAttributes(attribute.String("formsubmit.result", res.Kind.String()))
	if res.Status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	}
	if res.Failed() {
		span.SetStatus(codes.Error, res.Message())
	}

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("target", target),
		zap.Stringer("result", res.Kind),
	)
	switch res.Kind {
	case Success, Fallback:
		log.Debug("submission completed", zap.Int("status", res.Status))
	default:
		log.Error("submission failed", zap.Int("status", res.Status), zap.Error(res.Err))
	}
	return res
}

func (c *Client) submit(ctx context.Context, target, requestID string, enc payload.Encoded) Result {
	if c.validator != nil {
		if err := c.validator.Validate(ctx, http.MethodPost, target, enc); err != nil {
			return Result{Kind: Rejected, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(enc.Body))
	if err != nil {
		return Result{Kind: NetworkError, Err: err}
	}
	req.Header.Set("Content-Type", enc.ContentType)
	req.Header.Set("Accept", "text/html")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Kind: NetworkError, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Kind: HTTPError, Status: resp.StatusCode, Err: &StatusError{Code: resp.StatusCode}}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Kind: NetworkError, Status: resp.StatusCode, Err: err}
	}

	markup, found, err := fragment.Extract(bytes.NewReader(body), c.resultID)
	if err != nil || !found {
		return Result{Kind: Fallback, Status: resp.StatusCode, Fragment: FallbackMarkup}
	}
	return Result{Kind: Success, Status: resp.StatusCode, Fragment: c.sanitizer.Sanitize(markup)}
}
