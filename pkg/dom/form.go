package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ControlKind classifies form controls.
type ControlKind string

const (
	ControlText     ControlKind = "text"
	ControlTextArea ControlKind = "textarea"
	ControlSelect   ControlKind = "select"
	ControlCheckbox ControlKind = "checkbox"
	ControlRadio    ControlKind = "radio"
	ControlFile     ControlKind = "file"
	ControlHidden   ControlKind = "hidden"
	ControlSubmit   ControlKind = "submit"
	ControlButton   ControlKind = "button"
)

// Option is a choice of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Control describes a named form control as seen by a user filling the form.
type Control struct {
	Name     string
	Kind     ControlKind
	Label    string
	Value    string
	Options  []Option
	Multiple bool
	Required bool
	Disabled bool
	Checked  bool
}

// Entry is one name/value pair of the form data set. File entries carry a
// non-nil File; an empty file input contributes a File with no name.
type Entry struct {
	Name  string
	Value string
	File  *File
}

// Form wraps a form element.
type Form struct {
	el *Element
}

// Element returns the underlying form element.
func (f *Form) Element() *Element {
	return f.el
}

// ID reports the form id.
func (f *Form) ID() string {
	return f.el.ID()
}

// Controls lists the named controls of the form in document order.
func (f *Form) Controls() []Control {
	var out []Control
	for _, n := range f.controlNodes() {
		name := attr(n, "name")
		if name == "" {
			continue
		}
		out = append(out, f.describe(n, name))
	}
	return out
}

// SubmitControls lists the named submit buttons of the form.
func (f *Form) SubmitControls() []Control {
	var out []Control
	for _, c := range f.Controls() {
		if c.Kind == ControlSubmit && !c.Disabled {
			out = append(out, c)
		}
	}
	return out
}

// HasSubmitter reports whether the form owns an enabled submit control with
// the given name.
func (f *Form) HasSubmitter(name string) bool {
	for _, c := range f.SubmitControls() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Entries builds the form data set with browser FormData semantics: named and
// enabled controls only, checked checkboxes and radios, selected options,
// assigned files. Buttons are never included.
func (f *Form) Entries() []Entry {
	var out []Entry
	for _, n := range f.controlNodes() {
		name := attr(n, "name")
		if name == "" || hasAttr(n, "disabled") {
			continue
		}
		switch n.Data {
		case "button":
			continue
		case "textarea":
			out = append(out, Entry{Name: name, Value: htmlquery.InnerText(n)})
		case "select":
			for _, opt := range selectOptions(n) {
				if opt.Selected {
					out = append(out, Entry{Name: name, Value: opt.Value})
				}
			}
		case "input":
			switch inputKind(n) {
			case ControlSubmit, ControlButton:
				continue
			case ControlCheckbox, ControlRadio:
				if !hasAttr(n, "checked") {
					continue
				}
				value, ok := lookupAttr(n, "value")
				if !ok {
					value = "on"
				}
				out = append(out, Entry{Name: name, Value: value})
			case ControlFile:
				files := f.el.doc.filesFor(n)
				if len(files) == 0 {
					out = append(out, Entry{Name: name, File: &File{}})
					continue
				}
				for i := range files {
					file := files[i]
					out = append(out, Entry{Name: name, Value: file.Name, File: &file})
				}
			default:
				out = append(out, Entry{Name: name, Value: attr(n, "value")})
			}
		}
	}
	return out
}

// SetValue assigns a value to the named control. Text-like inputs and
// textareas take the value verbatim, selects select the matching option,
// checkboxes and radios are checked when their value matches.
func (f *Form) SetValue(name, value string) error {
	nodes := f.namedNodes(name)
	if len(nodes) == 0 {
		return fmt.Errorf("dom: form %q has no control named %q", f.ID(), name)
	}
	first := nodes[0]
	switch first.Data {
	case "textarea":
		for c := first.FirstChild; c != nil; {
			next := c.NextSibling
			first.RemoveChild(c)
			c = next
		}
		first.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		return nil
	case "select":
		return setSelected(first, value)
	case "input":
		switch inputKind(first) {
		case ControlCheckbox, ControlRadio:
			matched := false
			for _, n := range nodes {
				v, ok := lookupAttr(n, "value")
				if !ok {
					v = "on"
				}
				if v == value {
					setAttr(n, "checked", "")
					matched = true
				} else if inputKind(n) == ControlRadio {
					removeAttr(n, "checked")
				}
			}
			if !matched {
				return fmt.Errorf("dom: control %q has no choice %q", name, value)
			}
			return nil
		case ControlFile:
			return fmt.Errorf("dom: control %q is a file input, use SetFiles", name)
		}
		setAttr(first, "value", value)
		return nil
	}
	return fmt.Errorf("dom: control %q cannot take a value", name)
}

// SetSelected replaces the selection of the named select with the options
// whose values are listed. A single-choice select takes exactly one value.
func (f *Form) SetSelected(name string, values ...string) error {
	for _, n := range f.namedNodes(name) {
		if n.Data != "select" {
			continue
		}
		if !hasAttr(n, "multiple") {
			if len(values) != 1 {
				return fmt.Errorf("dom: select %q takes a single value", name)
			}
			return setSelected(n, values[0])
		}
		want := make(map[string]bool, len(values))
		for _, v := range values {
			want[v] = false
		}
		for _, opt := range htmlquery.Find(n, ".//option") {
			v, ok := lookupAttr(opt, "value")
			if !ok {
				v = collapseSpace(htmlquery.InnerText(opt))
			}
			if _, hit := want[v]; hit {
				setAttr(opt, "selected", "")
				want[v] = true
				continue
			}
			removeAttr(opt, "selected")
		}
		for v, seen := range want {
			if !seen {
				return fmt.Errorf("dom: select %q has no option %q", name, v)
			}
		}
		return nil
	}
	return fmt.Errorf("dom: form %q has no select named %q", f.ID(), name)
}

// SetChecked checks or unchecks the checkbox or radio named name whose value
// is value. Checking a radio unchecks the rest of its group.
func (f *Form) SetChecked(name, value string, checked bool) error {
	if checked {
		return f.SetValue(name, value)
	}
	for _, n := range f.namedNodes(name) {
		if n.Data != "input" {
			continue
		}
		if kind := inputKind(n); kind != ControlCheckbox && kind != ControlRadio {
			continue
		}
		v, ok := lookupAttr(n, "value")
		if !ok {
			v = "on"
		}
		if v == value {
			removeAttr(n, "checked")
			return nil
		}
	}
	return fmt.Errorf("dom: control %q has no choice %q", name, value)
}

// SetFiles assigns files to the named file input, replacing earlier ones.
func (f *Form) SetFiles(name string, files ...File) error {
	for _, n := range f.namedNodes(name) {
		if n.Data == "input" && inputKind(n) == ControlFile {
			if len(files) > 1 && !hasAttr(n, "multiple") {
				return fmt.Errorf("dom: file input %q accepts a single file", name)
			}
			f.el.doc.setFiles(n, files)
			return nil
		}
	}
	return fmt.Errorf("dom: form %q has no file input named %q", f.ID(), name)
}

func (f *Form) namedNodes(name string) []*html.Node {
	var out []*html.Node
	for _, n := range f.controlNodes() {
		if attr(n, "name") == name {
			out = append(out, n)
		}
	}
	return out
}

func (f *Form) controlNodes() []*html.Node {
	var out []*html.Node
	for c := f.el.node.FirstChild; c != nil; c = c.NextSibling {
		descend(c, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return true
			}
			switch n.Data {
			case "input", "select", "textarea", "button":
				out = append(out, n)
				return false
			}
			return true
		})
	}
	return out
}

func (f *Form) describe(n *html.Node, name string) Control {
	c := Control{
		Name:     name,
		Required: hasAttr(n, "required"),
		Disabled: hasAttr(n, "disabled"),
		Label:    f.labelFor(n),
	}
	switch n.Data {
	case "textarea":
		c.Kind = ControlTextArea
		c.Value = htmlquery.InnerText(n)
	case "select":
		c.Kind = ControlSelect
		c.Multiple = hasAttr(n, "multiple")
		c.Options = selectOptions(n)
		for _, opt := range c.Options {
			if opt.Selected {
				c.Value = opt.Value
				break
			}
		}
	case "button":
		c.Kind = ControlButton
		if t := strings.ToLower(attr(n, "type")); t == "" || t == "submit" {
			c.Kind = ControlSubmit
		}
		c.Value = attr(n, "value")
		if c.Label == "" {
			c.Label = collapseSpace(htmlquery.InnerText(n))
		}
	default:
		c.Kind = inputKind(n)
		c.Multiple = hasAttr(n, "multiple")
		c.Value = attr(n, "value")
		if c.Kind == ControlCheckbox || c.Kind == ControlRadio {
			c.Checked = hasAttr(n, "checked")
			if _, ok := lookupAttr(n, "value"); !ok {
				c.Value = "on"
			}
		}
		if c.Kind == ControlSubmit && c.Label == "" {
			c.Label = c.Value
		}
	}
	return c
}

func (f *Form) labelFor(n *html.Node) string {
	id := attr(n, "id")
	if id == "" {
		return ""
	}
	var label string
	walk(f.el.doc.root, func(l *html.Node) bool {
		if l.Type == html.ElementNode && l.Data == "label" && attr(l, "for") == id {
			label = collapseSpace(htmlquery.InnerText(l))
			return false
		}
		return true
	})
	return label
}

func inputKind(n *html.Node) ControlKind {
	switch strings.ToLower(attr(n, "type")) {
	case "checkbox":
		return ControlCheckbox
	case "radio":
		return ControlRadio
	case "file":
		return ControlFile
	case "hidden":
		return ControlHidden
	case "submit", "image":
		return ControlSubmit
	case "button", "reset":
		return ControlButton
	default:
		return ControlText
	}
}

func selectOptions(sel *html.Node) []Option {
	nodes := htmlquery.Find(sel, ".//option")
	opts := make([]Option, 0, len(nodes))
	anySelected := false
	for _, n := range nodes {
		value, ok := lookupAttr(n, "value")
		label := collapseSpace(htmlquery.InnerText(n))
		if !ok {
			value = label
		}
		selected := hasAttr(n, "selected")
		anySelected = anySelected || selected
		opts = append(opts, Option{Value: value, Label: label, Selected: selected})
	}
	if !anySelected && !hasAttr(sel, "multiple") {
		for i, n := range nodes {
			if !hasAttr(n, "disabled") {
				opts[i].Selected = true
				break
			}
		}
	}
	return opts
}

func setSelected(sel *html.Node, value string) error {
	nodes := htmlquery.Find(sel, ".//option")
	multiple := hasAttr(sel, "multiple")
	matched := false
	for _, n := range nodes {
		v, ok := lookupAttr(n, "value")
		if !ok {
			v = collapseSpace(htmlquery.InnerText(n))
		}
		switch {
		case v == value && !matched:
			setAttr(n, "selected", "")
			matched = true
		case !multiple:
			removeAttr(n, "selected")
		}
	}
	if !matched {
		return fmt.Errorf("dom: select %q has no option %q", attr(sel, "name"), value)
	}
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
