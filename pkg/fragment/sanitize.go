package fragment

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitizer cleans markup before it is spliced into a live page.
type Sanitizer interface {
	Sanitize(markup string) string
}

// SanitizerFunc adapts a function to the Sanitizer interface.
type SanitizerFunc func(string) string

// Sanitize calls fn.
func (fn SanitizerFunc) Sanitize(markup string) string {
	return fn(markup)
}

// Passthrough leaves markup untouched.
var Passthrough Sanitizer = SanitizerFunc(func(markup string) string { return markup })

// Default returns the shared sanitizer for result fragments. It keeps user
// generated content markup (headings, paragraphs, links, lists, line breaks)
// and audio players pointing at generated files, and strips scripts and event
// handlers. Inline style attributes are dropped too, so a server fragment such
// as <p style="color:green"> loses its colour; class is the only attribute kept
// on every element. Use Passthrough when server styling must survive.
func Default() Sanitizer {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("audio", "source")
		p.AllowAttrs("controls", "preload").OnElements("audio")
		p.AllowAttrs("src").OnElements("audio", "source")
		p.AllowAttrs("type").OnElements("source")
		p.AllowAttrs("class").Globally()
		policy = p
	})
	return policy
}
