// Package report renders a plain text summary of a submission.
package report

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formsubmit/pkg/controller"
)

//go:embed templates/*.tpl
var builtin embed.FS

// DefaultTemplate names the built-in outcome template.
const DefaultTemplate = "outcome.tpl"

// Summary is the data handed to the template.
type Summary struct {
	Target    string
	Action    string
	State     string
	Status    int
	RequestID string
	Message   string
	Stale     bool
	Entries   []string
	Result    string
}

// FromOutcome builds a Summary. entries is the form data as described by
// payload.Describe; result is the text content of the result region.
func FromOutcome(target string, out controller.Outcome, entries []string, result string) Summary {
	s := Summary{
		Target:    target,
		Action:    out.Action,
		State:     out.State.Kind.String(),
		Status:    out.Result.Status,
		RequestID: out.Result.RequestID,
		Stale:     out.Stale,
		Entries:   append([]string(nil), entries...),
		Result:    strings.TrimSpace(result),
	}
	if out.Result.Failed() {
		s.Message = out.Result.Message()
	}
	return s
}

// Option configures a Reporter.
type Option func(*config)

type config struct {
	templates fs.FS
	name      string
}

// WithFS loads templates from files instead of the built-in set.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplate selects the template rendered by Render.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// Reporter renders summaries through a pongo2 template.
type Reporter struct {
	tpl *pongo2.Template
}

// New compiles the configured template.
func New(options ...Option) (*Reporter, error) {
	cfg := &config{name: DefaultTemplate}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		sub, err := fs.Sub(builtin, "templates")
		if err != nil {
			return nil, fmt.Errorf("report: open built-in templates: %w", err)
		}
		cfg.templates = sub
	}

	set := pongo2.NewSet("formsubmit-report", pongo2.NewFSLoader(cfg.templates))
	tpl, err := set.FromFile(cfg.name)
	if err != nil {
		return nil, fmt.Errorf("report: compile %s: %w", cfg.name, err)
	}
	return &Reporter{tpl: tpl}, nil
}

// Render writes the summary to w.
func (r *Reporter) Render(w io.Writer, s Summary) error {
	if r == nil || r.tpl == nil {
		return errors.New("report: reporter is not initialised")
	}
	ctx := pongo2.Context{
		"target":     s.Target,
		"action":     s.Action,
		"state":      s.State,
		"status":     s.Status,
		"request_id": s.RequestID,
		"message":    s.Message,
		"stale":      s.Stale,
		"entries":    s.Entries,
		"result":     s.Result,
	}
	if err := r.tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}
