package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/contract"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/dom"
)

type violation struct {
	file     string
	location string
	message  string
}

type lintConfig struct {
	contract   string
	submitPath string
	ids        controller.IDs
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [pages...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint HTML pages for forms that do not match their submission contract.\n"); err != nil {
			panic(err)
		}
		flag.PrintDefaults()
	}
	cfg := lintConfig{ids: controller.DefaultIDs()}
	flag.StringVar(&cfg.contract, "contract", contract.BuiltinVoiceForm, "OpenAPI document path or builtin:voiceform")
	flag.StringVar(&cfg.submitPath, "path", controller.DefaultSubmitPath, "path the form posts to")
	flag.StringVar(&cfg.ids.Form, "form-id", cfg.ids.Form, "id of the form element")
	flag.StringVar(&cfg.ids.Spinner, "spinner-id", cfg.ids.Spinner, "id of the loading indicator")
	flag.StringVar(&cfg.ids.Result, "result-id", cfg.ids.Result, "id of the result region")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "lint: no pages given")
		os.Exit(2)
	}

	violations, err := lint(context.Background(), cfg, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		os.Exit(1)
	}
	if len(violations) > 0 {
		report(os.Stderr, violations)
		os.Exit(1)
	}
}

func lint(ctx context.Context, cfg lintConfig, paths []string) ([]violation, error) {
	c, err := contract.Open(ctx, cfg.contract)
	if err != nil {
		return nil, err
	}
	fields, err := c.Fields(http.MethodPost, cfg.submitPath)
	if err != nil {
		return nil, err
	}

	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(path, cfg, fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		violations = append(violations, linted...)
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	return violations, nil
}

func lintFile(path string, cfg lintConfig, fields []contract.Field) ([]violation, error) {
	raw, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer raw.Close()

	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var result []violation
	for _, id := range []string{cfg.ids.Spinner, cfg.ids.Result} {
		if doc.ElementByID(id) == nil {
			result = append(result, violation{
				file:     path,
				location: formatLocation([]string{"#" + id}),
				message:  "element not found",
			})
		}
	}

	form, ok := doc.Form(cfg.ids.Form)
	if !ok {
		return append(result, violation{
			file:     path,
			location: formatLocation([]string{"#" + cfg.ids.Form}),
			message:  "form element not found",
		}), nil
	}

	declared := make(map[string]contract.Field, len(fields))
	for _, f := range fields {
		declared[f.Name] = f
	}
	for _, control := range form.Controls() {
		if control.Disabled || control.Kind == dom.ControlButton {
			continue
		}
		result = append(result, lintControl(path, []string{"#" + cfg.ids.Form, control.Name}, control, declared)...)
	}
	if len(form.SubmitControls()) == 0 {
		result = append(result, violation{
			file:     path,
			location: formatLocation([]string{"#" + cfg.ids.Form}),
			message:  "form has no named submit control",
		})
	}
	return result, nil
}

func lintControl(file string, location []string, control dom.Control, declared map[string]contract.Field) []violation {
	field, ok := declared[control.Name]
	if !ok {
		return []violation{{
			file:     file,
			location: formatLocation(location),
			message:  fmt.Sprintf("%s control %q is not declared by the contract", control.Kind, control.Name),
		}}
	}

	var result []violation
	if control.Kind == dom.ControlFile && control.Multiple && !field.Array {
		result = append(result, violation{
			file:     file,
			location: formatLocation(location),
			message:  "multiple file input maps to a non-array property",
		})
	}
	if len(field.Enum) == 0 {
		return result
	}
	allowed := make(map[string]struct{}, len(field.Enum))
	for _, v := range field.Enum {
		allowed[v] = struct{}{}
	}
	for _, opt := range control.Options {
		if _, ok := allowed[opt.Value]; !ok {
			result = append(result, violation{
				file:     file,
				location: formatLocation(append(location, "option")),
				message:  fmt.Sprintf("value %q is not allowed (allowed: %s)", opt.Value, strings.Join(field.Enum, ", ")),
			})
		}
	}
	return result
}

func report(w io.Writer, violations []violation) {
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
