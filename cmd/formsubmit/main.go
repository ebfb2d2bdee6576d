package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit"
	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/internal/logging"
	"github.com/goliatone/go-formsubmit/internal/report"
	"github.com/goliatone/go-formsubmit/pkg/dom"
	"github.com/goliatone/go-formsubmit/pkg/fragment"
	"github.com/goliatone/go-formsubmit/pkg/payload"
	"github.com/goliatone/go-formsubmit/pkg/prompt"
)

// errSubmissionFailed marks a run whose submission rendered an error.
var errSubmissionFailed = errors.New("submission failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, prompt.NewSurveyDriver())
	switch {
	case err == nil:
	case errors.Is(err, errSubmissionFailed):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		log.Fatalf("formsubmit: %v", err)
	}
}

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type options struct {
	configPath  string
	url         string
	action      string
	sets        listFlag
	files       listFlag
	contract    string
	interactive bool
	out         string
	logLevel    string
	logFormat   string
	timeout     time.Duration
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver prompt.Driver) error {
	fs := flag.NewFlagSet("formsubmit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "YAML or TOML config file")
	fs.StringVar(&opts.url, "url", "", "URL of the page holding the form")
	fs.StringVar(&opts.action, "action", "", "name of the submit control to click")
	fs.Var(&opts.sets, "set", "field value as name=value (repeatable)")
	fs.Var(&opts.files, "file", "file selection as field=path (repeatable)")
	fs.StringVar(&opts.contract, "contract", "", "OpenAPI document to check submissions against, or builtin:voiceform")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for every form field")
	fs.StringVar(&opts.out, "out", "", "write the updated page HTML to this file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(fs, opts, &cfg)
	if strings.TrimSpace(cfg.URL) == "" {
		return errors.New("a page URL is required (-url or FORMSUBMIT_URL)")
	}

	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	session, err := formsubmit.Open(ctx, cfg.URL, sessionOptions(cfg, logger)...)
	if err != nil {
		return err
	}

	action := opts.action
	var fillErr error
	session.Controller.Inspect(func(_ *dom.Document, form *dom.Form) {
		if fillErr = applyValues(form, opts.sets, opts.files); fillErr != nil {
			return
		}
		if opts.interactive {
			picked, err := prompt.Fill(ctx, driver, form)
			if err != nil {
				fillErr = err
				return
			}
			if action == "" {
				action = picked
			}
		}
	})
	if fillErr != nil {
		return fillErr
	}

	var entries []string
	session.Controller.Inspect(func(_ *dom.Document, form *dom.Form) {
		p := payload.FromForm(form)
		if form.HasSubmitter(action) {
			p.SetAction(action)
		}
		entries = p.Describe()
	})

	outcome, err := session.Submit(ctx, action)
	if err != nil {
		return err
	}

	reporter, err := report.New()
	if err != nil {
		return err
	}
	summary := report.FromOutcome(session.Controller.Target(), outcome, entries, session.ResultText())
	if err := reporter.Render(stdout, summary); err != nil {
		return err
	}

	if opts.out != "" {
		if err := writePage(session, opts.out); err != nil {
			return err
		}
		logger.Info("page written", zap.String("path", opts.out))
	}

	if outcome.Result.Failed() {
		return errSubmissionFailed
	}
	return nil
}

// applyFlags lets explicitly passed flags win over file and environment.
func applyFlags(fs *flag.FlagSet, opts options, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = opts.url
		case "contract":
			cfg.Contract = opts.contract
		case "log-level":
			cfg.LogLevel = opts.logLevel
		case "log-format":
			cfg.LogFormat = opts.logFormat
		case "timeout":
			cfg.Timeout = config.Duration(opts.timeout)
		}
	})
}

func sessionOptions(cfg config.Config, logger *zap.Logger) []formsubmit.Option {
	opts := []formsubmit.Option{
		formsubmit.WithLogger(logger),
		formsubmit.WithTimeout(cfg.Timeout.Std()),
		formsubmit.WithSubmitPath(cfg.SubmitPath),
		formsubmit.WithIDs(formsubmit.IDs{
			Form:    cfg.FormID,
			Spinner: cfg.SpinnerID,
			Result:  cfg.ResultID,
		}),
	}
	if !cfg.Sanitize {
		opts = append(opts, formsubmit.WithSanitizer(fragment.Passthrough))
	}
	if cfg.Contract != "" {
		opts = append(opts, formsubmit.WithContract(cfg.Contract))
	}
	return opts
}

func applyValues(form *dom.Form, sets, files []string) error {
	for _, raw := range sets {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid -set %q, expected name=value", raw)
		}
		if err := form.SetValue(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}

	selected := map[string][]dom.File{}
	var order []string
	for _, raw := range files {
		name, path, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid -file %q, expected field=path", raw)
		}
		file, err := dom.FileFromPath(strings.TrimSpace(path))
		if err != nil {
			return err
		}
		if _, seen := selected[name]; !seen {
			order = append(order, name)
		}
		selected[name] = append(selected[name], file)
	}
	for _, name := range order {
		if err := form.SetFiles(name, selected[name]...); err != nil {
			return err
		}
	}
	return nil
}

func writePage(session *formsubmit.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	if err := session.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write page: %w", err)
	}
	return f.Close()
}
