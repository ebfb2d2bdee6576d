package transport

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/fragment"
	"github.com/goliatone/go-formsubmit/pkg/payload"
)

// Validator checks an encoded request before it is sent.
type Validator interface {
	Validate(ctx context.Context, method, target string, enc payload.Encoded) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (proxies, transports).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout caps each request. Zero keeps requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithResultID overrides the id of the response element carrying the result
// fragment.
func WithResultID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.resultID = id
		}
	}
}

// WithSanitizer replaces the fragment sanitizer. Pass fragment.Passthrough to
// splice fragments verbatim.
func WithSanitizer(s fragment.Sanitizer) Option {
	return func(c *Client) {
		if s != nil {
			c.sanitizer = s
		}
	}
}

// WithValidator enables a pre-flight contract check.
func WithValidator(v Validator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the tracer provider used for submission spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithRequestIDFunc overrides the X-Request-ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}
