package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/dom"
)

// Fill walks the controls of form, asks the user for each value through
// driver and writes the answers back into the form. It returns the name of
// the submit control the user picked.
func Fill(ctx context.Context, driver Driver, form *dom.Form) (string, error) {
	if driver == nil {
		return "", fmt.Errorf("prompt: driver is nil")
	}
	if form == nil {
		return "", fmt.Errorf("prompt: form is nil")
	}

	radios := map[string]bool{}
	for _, control := range form.Controls() {
		if control.Disabled {
			continue
		}
		var err error
		switch control.Kind {
		case dom.ControlHidden, dom.ControlSubmit, dom.ControlButton:
			continue
		case dom.ControlSelect:
			err = promptSelect(ctx, driver, form, control)
		case dom.ControlCheckbox:
			err = promptCheckbox(ctx, driver, form, control)
		case dom.ControlRadio:
			if radios[control.Name] {
				continue
			}
			radios[control.Name] = true
			err = promptRadio(ctx, driver, form, control.Name)
		case dom.ControlFile:
			err = promptFiles(ctx, driver, form, control)
		default:
			err = promptText(ctx, driver, form, control)
		}
		if err != nil {
			return "", err
		}
	}
	return chooseSubmitter(ctx, driver, form)
}

func promptSelect(ctx context.Context, driver Driver, form *dom.Form, control dom.Control) error {
	labels := make([]string, len(control.Options))
	var defaults []int
	defaultIdx := -1
	for i, opt := range control.Options {
		labels[i] = optionLabel(opt)
		if opt.Selected {
			defaults = append(defaults, i)
			if defaultIdx < 0 {
				defaultIdx = i
			}
		}
	}

	cfg := SelectConfig{
		Message:      displayLabel(control),
		Options:      labels,
		DefaultIndex: defaultIdx,
		Defaults:     defaults,
	}
	if control.Multiple {
		for {
			picked, err := driver.MultiSelect(ctx, cfg)
			if err != nil {
				return err
			}
			if control.Required && len(picked) == 0 {
				_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: required", control.Name))
				continue
			}
			values := make([]string, 0, len(picked))
			for _, idx := range picked {
				values = append(values, control.Options[idx].Value)
			}
			return form.SetSelected(control.Name, values...)
		}
	}

	for {
		idx, err := driver.Select(ctx, cfg)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(control.Options) {
			_ = driver.Info(ctx, fmt.Sprintf("Invalid %s selection", control.Name))
			continue
		}
		return form.SetSelected(control.Name, control.Options[idx].Value)
	}
}

func promptCheckbox(ctx context.Context, driver Driver, form *dom.Form, control dom.Control) error {
	checked, err := driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(control),
		Default: control.Checked,
	})
	if err != nil {
		return err
	}
	return form.SetChecked(control.Name, control.Value, checked)
}

func promptRadio(ctx context.Context, driver Driver, form *dom.Form, name string) error {
	var values, labels []string
	defaultIdx := -1
	for _, c := range form.Controls() {
		if c.Kind != dom.ControlRadio || c.Name != name || c.Disabled {
			continue
		}
		if c.Checked && defaultIdx < 0 {
			defaultIdx = len(values)
		}
		values = append(values, c.Value)
		label := c.Label
		if label == "" {
			label = c.Value
		}
		labels = append(labels, label)
	}
	if len(values) == 0 {
		return nil
	}
	for {
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      name,
			Options:      labels,
			DefaultIndex: defaultIdx,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			_ = driver.Info(ctx, fmt.Sprintf("Invalid %s selection", name))
			continue
		}
		return form.SetValue(name, values[idx])
	}
}

func promptFiles(ctx context.Context, driver Driver, form *dom.Form, control dom.Control) error {
	help := "path to a file"
	if control.Multiple {
		help = "comma separated paths"
	}
	for {
		answer, err := driver.Input(ctx, InputConfig{
			Message: displayLabel(control),
			Help:    help,
		})
		if err != nil {
			return err
		}
		paths := splitPaths(answer)
		if len(paths) == 0 {
			if control.Required {
				_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: required", control.Name))
				continue
			}
			return form.SetFiles(control.Name)
		}
		if len(paths) > 1 && !control.Multiple {
			_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: accepts a single file", control.Name))
			continue
		}
		files, err := openFiles(paths)
		if err != nil {
			_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", control.Name, err))
			continue
		}
		return form.SetFiles(control.Name, files...)
	}
}

func promptText(ctx context.Context, driver Driver, form *dom.Form, control dom.Control) error {
	for {
		var (
			answer string
			err    error
		)
		if control.Kind == dom.ControlTextArea {
			answer, err = driver.TextArea(ctx, TextAreaConfig{
				Message: displayLabel(control),
				Default: control.Value,
			})
		} else {
			answer, err = driver.Input(ctx, InputConfig{
				Message: displayLabel(control),
				Default: control.Value,
			})
		}
		if err != nil {
			return err
		}
		if control.Required && strings.TrimSpace(answer) == "" {
			_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: required", control.Name))
			continue
		}
		return form.SetValue(control.Name, answer)
	}
}

func chooseSubmitter(ctx context.Context, driver Driver, form *dom.Form) (string, error) {
	controls := form.SubmitControls()
	switch len(controls) {
	case 0:
		return "", ErrNoSubmitter
	case 1:
		return controls[0].Name, nil
	}

	labels := make([]string, len(controls))
	for i, c := range controls {
		labels[i] = displayLabel(c)
	}
	for {
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      "Submit with",
			Options:      labels,
			DefaultIndex: 0,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(controls) {
			_ = driver.Info(ctx, "Invalid submit selection")
			continue
		}
		return controls[idx].Name, nil
	}
}

func openFiles(paths []string) ([]dom.File, error) {
	files := make([]dom.File, 0, len(paths))
	for _, path := range paths {
		file, err := dom.FileFromPath(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func splitPaths(answer string) []string {
	var out []string
	for _, part := range strings.Split(answer, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func displayLabel(control dom.Control) string {
	if control.Label != "" {
		return control.Label
	}
	return control.Name
}

func optionLabel(opt dom.Option) string {
	if opt.Label != "" {
		return opt.Label
	}
	return opt.Value
}
