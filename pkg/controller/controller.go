package controller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/dom"
	"github.com/goliatone/go-formsubmit/pkg/payload"
	"github.com/goliatone/go-formsubmit/pkg/transport"
	"github.com/goliatone/go-formsubmit/pkg/uistate"
)

// Submitter posts an encoded payload. *transport.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, target string, enc payload.Encoded) transport.Result
}

// Outcome reports what a submission did.
type Outcome struct {
	Token  uint64
	Action string
	Result transport.Result
	State  uistate.State
	// Stale is true when a later submission superseded this one; its result
	// was not applied to the page.
	Stale bool
}

// Controller owns the submit flow of one form on one page. All page access
// goes through its lock; network calls run outside it, so submissions may
// overlap. Only the latest submission's result reaches the page.
type Controller struct {
	mu    sync.Mutex
	doc   *dom.Document
	form  *dom.Form
	state uistate.State

	ids        IDs
	submitPath string
	target     string
	client     Submitter
	logger     *zap.Logger
	observer   Observer

	seq atomic.Uint64
}

// Attach locates the form on the page and returns a controller bound to it.
// Submissions are posted to the submit path resolved against pageURL.
func Attach(doc *dom.Document, pageURL string, client Submitter, options ...Option) (*Controller, error) {
	if doc == nil {
		return nil, errors.New("controller: document is nil")
	}
	if client == nil {
		return nil, errors.New("controller: submitter is nil")
	}

	c := &Controller{
		doc:        doc,
		ids:        DefaultIDs(),
		submitPath: DefaultSubmitPath,
		client:     client,
		logger:     zap.NewNop(),
		state:      uistate.IdleState(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.logger = c.logger.Named("controller")

	target, err := resolveTarget(pageURL, c.submitPath)
	if err != nil {
		return nil, err
	}
	c.target = target

	form, ok := doc.Form(c.ids.Form)
	if !ok {
		c.logger.Error("form element not found", zap.String("id", c.ids.Form))
		return nil, fmt.Errorf("%w: #%s", ErrFormNotFound, c.ids.Form)
	}
	c.form = form
	c.logger.Debug("form element found, submit handler attached",
		zap.String("id", c.ids.Form), zap.String("target", c.target))
	return c, nil
}

// Target reports the URL submissions are posted to.
func (c *Controller) Target() string {
	return c.target
}

// IDs reports the element ids the controller works with.
func (c *Controller) IDs() IDs {
	return c.ids
}

// State returns the last applied UI state.
func (c *Controller) State() uistate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Inspect runs fn with the page locked. fn must not retain the document.
func (c *Controller) Inspect(fn func(doc *dom.Document, form *dom.Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.doc, c.form)
}

// Submit handles one submit event triggered by the submit control named
// submitter. An empty submitter submits without an action field.
//
// Setup failures (missing spinner or result element, unknown submitter)
// return an error and send nothing. Every other failure is rendered into the
// result region and reported through the Outcome.
func (c *Controller) Submit(ctx context.Context, submitter string) (Outcome, error) {
	action := strings.TrimSpace(submitter)

	c.mu.Lock()
	spinner, result, err := c.elements()
	if err != nil {
		c.mu.Unlock()
		return Outcome{}, err
	}
	if action != "" && !c.form.HasSubmitter(action) {
		c.mu.Unlock()
		c.logger.Error("submitter is not a submit control of the form",
			zap.String("submitter", action), zap.String("form", c.ids.Form))
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownSubmitter, action)
	}

	p := payload.FromForm(c.form)
	if !p.SetAction(action) {
		action = ""
	}
	token := c.seq.Add(1)
	log := c.logger.With(zap.Uint64("token", token), zap.String("submitter", nameOrUnknown(action)))
	log.Info("form submitted")
	for _, entry := range p.Describe() {
		log.Debug("form data entry", zap.String("entry", entry))
	}

	if err := c.apply(token, uistate.LoadingState(), spinner, result); err != nil {
		c.mu.Unlock()
		return Outcome{}, err
	}
	c.mu.Unlock()

	var res transport.Result
	enc, err := p.Encode()
	if err != nil {
		res = transport.Result{Kind: transport.NetworkError, Err: err}
	} else {
		res = c.client.Submit(ctx, c.target, enc)
	}
	state := stateFor(res)
	out := Outcome{Token: token, Action: action, Result: res, State: state}

	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.seq.Load(); token != latest {
		log.Warn("discarding stale response", zap.Uint64("latest", latest), zap.Stringer("result", res.Kind))
		out.Stale = true
		return out, nil
	}

	spinner, result, err = c.elements()
	if err != nil {
		return out, err
	}
	if err := c.apply(token, state, spinner, result); err != nil {
		return out, err
	}
	log.Info("result applied", zap.Stringer("state", state.Kind), zap.Int("status", res.Status))
	return out, nil
}

// stateFor maps a transport result to the UI state it renders as.
func stateFor(res transport.Result) uistate.State {
	switch res.Kind {
	case transport.Success, transport.Fallback:
		return uistate.ResultState(res.Fragment)
	case transport.HTTPError, transport.NetworkError, transport.Rejected:
		return uistate.ErrorState(res.Message())
	default:
		return uistate.ErrorState(fmt.Sprintf("unexpected result %s", res.Kind))
	}
}

// elements looks up the spinner and result regions. Callers hold c.mu.
func (c *Controller) elements() (*dom.Element, *dom.Element, error) {
	spinner := c.doc.ElementByID(c.ids.Spinner)
	result := c.doc.ElementByID(c.ids.Result)
	if spinner == nil {
		c.logger.Error("spinner element not found", zap.String("id", c.ids.Spinner))
	}
	if result == nil {
		c.logger.Error("result element not found", zap.String("id", c.ids.Result))
	}
	if spinner == nil || result == nil {
		c.logger.Error("required elements not found, submission aborted",
			zap.String("spinner", c.ids.Spinner), zap.String("result", c.ids.Result))
		return nil, nil, fmt.Errorf("%w: #%s or #%s", ErrElementMissing, c.ids.Spinner, c.ids.Result)
	}
	return spinner, result, nil
}

// apply renders state onto the page. Callers hold c.mu.
func (c *Controller) apply(token uint64, state uistate.State, spinner, result *dom.Element) error {
	view := uistate.Render(state)
	if view.ReplaceContent {
		if err := result.SetInnerHTML(view.Markup); err != nil {
			return fmt.Errorf("controller: apply %s: %w", state.Kind, err)
		}
	}
	setVisible(spinner, view.SpinnerVisible)
	setVisible(result, view.ResultVisible)
	c.state = state
	if c.observer != nil {
		c.observer(token, state)
	}
	return nil
}

func setVisible(el *dom.Element, visible bool) {
	if visible {
		el.Show()
		return
	}
	el.Hide()
}

func resolveTarget(pageURL, submitPath string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", fmt.Errorf("controller: parse page url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return "", fmt.Errorf("controller: page url %q must be absolute", pageURL)
	}
	ref, err := url.Parse(submitPath)
	if err != nil {
		return "", fmt.Errorf("controller: parse submit path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func nameOrUnknown(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
