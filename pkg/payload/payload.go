package payload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/dom"
)

// Field is a plain name/value pair of a submission.
type Field struct {
	Name  string
	Value string
}

// Action returns the synthetic field naming the submit control that triggered
// the submission. Browsers do not include the submitter in FormData, so the
// controller appends it with an empty value.
func Action(submitter string) Field {
	return Field{Name: strings.TrimSpace(submitter)}
}

// Payload is the ordered form data set of one submission. It is built fresh
// per submit and discarded once the response is processed.
type Payload struct {
	entries []dom.Entry
	action  string
}

// New builds a payload from a form's entries.
func New(entries []dom.Entry) *Payload {
	return &Payload{entries: append([]dom.Entry(nil), entries...)}
}

// FromForm snapshots the current form data set.
func FromForm(form *dom.Form) *Payload {
	return New(form.Entries())
}

// Add appends plain fields. Empty names are ignored.
func (p *Payload) Add(fields ...Field) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		p.entries = append(p.entries, dom.Entry{Name: name, Value: field.Value})
	}
}

// AddFile appends a file part.
func (p *Payload) AddFile(name string, file dom.File) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.entries = append(p.entries, dom.Entry{Name: name, Value: file.Name, File: &file})
}

// SetAction records the submitter and appends its action field. It reports
// false when submitter is empty, in which case nothing is appended.
func (p *Payload) SetAction(submitter string) bool {
	field := Action(submitter)
	if field.Name == "" {
		return false
	}
	p.action = field.Name
	p.Add(field)
	return true
}

// ActionName reports the recorded submitter, if any.
func (p *Payload) ActionName() string {
	return p.action
}

// Entries returns a copy of the entries in submission order.
func (p *Payload) Entries() []dom.Entry {
	return append([]dom.Entry(nil), p.entries...)
}

// Values collects plain field values by name. File parts are excluded.
func (p *Payload) Values() map[string][]string {
	out := make(map[string][]string)
	for _, e := range p.entries {
		if e.File != nil {
			continue
		}
		out[e.Name] = append(out[e.Name], e.Value)
	}
	return out
}

// Describe renders every entry as "name = value" sorted by name, the way the
// entries are logged before sending. File parts show their file name.
func (p *Payload) Describe() []string {
	lines := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		value := e.Value
		if e.File != nil {
			value = fmt.Sprintf("[file %q]", e.File.Name)
		}
		lines = append(lines, e.Name+" = "+value)
	}
	sort.Strings(lines)
	return lines
}
