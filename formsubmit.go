// Package formsubmit drives the asynchronous submit flow of an HTML form
// without a browser: it loads the page, fills the form, posts it as
// multipart data and splices the returned result fragment into the page.
package formsubmit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/contract"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/dom"
	"github.com/goliatone/go-formsubmit/pkg/fragment"
	"github.com/goliatone/go-formsubmit/pkg/transport"
)

// IDs aliases controller.IDs for callers configuring element ids.
type IDs = controller.IDs

// Outcome aliases controller.Outcome.
type Outcome = controller.Outcome

// Option configures Open and Attach.
type Option func(*config)

type config struct {
	httpClient     *http.Client
	timeout        time.Duration
	ids            IDs
	submitPath     string
	sanitizer      fragment.Sanitizer
	contract       string
	validator      transport.Validator
	logger         *zap.Logger
	tracerProvider trace.TracerProvider
	observer       controller.Observer
}

// WithHTTPClient overrides the HTTP client used for page loads and submits.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		if client != nil {
			cfg.httpClient = client
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = timeout
	}
}

// WithIDs overrides the form, spinner and result element ids. Empty ids keep
// their defaults.
func WithIDs(ids IDs) Option {
	return func(cfg *config) {
		if ids.Form != "" {
			cfg.ids.Form = ids.Form
		}
		if ids.Spinner != "" {
			cfg.ids.Spinner = ids.Spinner
		}
		if ids.Result != "" {
			cfg.ids.Result = ids.Result
		}
	}
}

// WithSubmitPath overrides the path submissions are posted to.
func WithSubmitPath(path string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			cfg.submitPath = trimmed
		}
	}
}

// WithSanitizer replaces the fragment sanitizer. Pass fragment.Passthrough to
// splice server markup verbatim.
func WithSanitizer(s fragment.Sanitizer) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.sanitizer = s
		}
	}
}

// WithContract checks every submission against an OpenAPI document before it
// is sent. location is a file path or contract.BuiltinVoiceForm.
func WithContract(location string) Option {
	return func(cfg *config) {
		cfg.contract = strings.TrimSpace(location)
	}
}

// WithValidator installs a ready validator. It takes precedence over
// WithContract.
func WithValidator(v transport.Validator) Option {
	return func(cfg *config) {
		cfg.validator = v
	}
}

// WithLogger sets the logger shared by the transport and the controller.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTracerProvider sets the provider used for submission spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// WithObserver receives every UI state applied to the page.
func WithObserver(fn controller.Observer) Option {
	return func(cfg *config) {
		cfg.observer = fn
	}
}

// Session is a loaded page with its controller attached.
type Session struct {
	PageURL    string
	Document   *dom.Document
	Controller *controller.Controller
	Client     *transport.Client
}

// Open fetches the page at pageURL and attaches a controller to its form.
func Open(ctx context.Context, pageURL string, options ...Option) (*Session, error) {
	cfg := newConfig(options)
	client, err := cfg.client(ctx)
	if err != nil {
		return nil, err
	}

	data, err := client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("formsubmit: %w", err)
	}
	doc, err := dom.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("formsubmit: parse page: %w", err)
	}
	return attach(doc, pageURL, client, cfg)
}

// Attach binds a controller to an already loaded document. pageURL is the
// address the document was served from.
func Attach(ctx context.Context, doc *dom.Document, pageURL string, options ...Option) (*Session, error) {
	if doc == nil {
		return nil, errors.New("formsubmit: document is nil")
	}
	cfg := newConfig(options)
	client, err := cfg.client(ctx)
	if err != nil {
		return nil, err
	}
	return attach(doc, pageURL, client, cfg)
}

// Submit submits the form as if the named submit control was clicked.
func (s *Session) Submit(ctx context.Context, submitter string) (Outcome, error) {
	return s.Controller.Submit(ctx, submitter)
}

// Render writes the current page markup to w.
func (s *Session) Render(w io.Writer) error {
	var err error
	s.Controller.Inspect(func(doc *dom.Document, _ *dom.Form) {
		err = doc.Render(w)
	})
	return err
}

// ResultText returns the text content of the result region.
func (s *Session) ResultText() string {
	var text string
	s.Controller.Inspect(func(doc *dom.Document, _ *dom.Form) {
		if el := doc.ElementByID(s.resultID()); el != nil {
			text = el.TextContent()
		}
	})
	return text
}

func (s *Session) resultID() string {
	return s.Controller.IDs().Result
}

func newConfig(options []Option) *config {
	cfg := &config{
		ids:        controller.DefaultIDs(),
		submitPath: controller.DefaultSubmitPath,
		sanitizer:  fragment.Default(),
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}

func (cfg *config) client(ctx context.Context) (*transport.Client, error) {
	validator := cfg.validator
	if validator == nil && cfg.contract != "" {
		c, err := contract.Open(ctx, cfg.contract)
		if err != nil {
			return nil, fmt.Errorf("formsubmit: %w", err)
		}
		validator = c
	}

	opts := []transport.Option{
		transport.WithTimeout(cfg.timeout),
		transport.WithResultID(cfg.ids.Result),
		transport.WithSanitizer(cfg.sanitizer),
		transport.WithLogger(cfg.logger),
	}
	if cfg.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(cfg.httpClient))
	}
	if validator != nil {
		opts = append(opts, transport.WithValidator(validator))
	}
	if cfg.tracerProvider != nil {
		opts = append(opts, transport.WithTracerProvider(cfg.tracerProvider))
	}
	return transport.New(opts...), nil
}

func attach(doc *dom.Document, pageURL string, client *transport.Client, cfg *config) (*Session, error) {
	ctrl, err := controller.Attach(doc, pageURL, client,
		controller.WithIDs(cfg.ids),
		controller.WithSubmitPath(cfg.submitPath),
		controller.WithLogger(cfg.logger),
		controller.WithObserver(cfg.observer),
	)
	if err != nil {
		return nil, err
	}
	return &Session{
		PageURL:    pageURL,
		Document:   doc,
		Controller: ctrl,
		Client:     client,
	}, nil
}
