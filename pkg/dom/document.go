package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is an in-memory HTML page. It mirrors the subset of the browser
// document API the submission controller relies on: lookups by id, inner
// markup replacement, display toggling and form data collection.
//
// Document is not safe for concurrent use; callers serialize access.
type Document struct {
	root  *html.Node
	files map[*html.Node][]File
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParseString panics if the markup cannot be parsed. Useful for tests.
func MustParseString(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

// Root exposes the underlying document node.
func (d *Document) Root() *html.Node {
	if d == nil {
		return nil
	}
	return d.root
}

// ElementByID returns the first element whose id attribute equals id, or nil
// when no such element exists.
func (d *Document) ElementByID(id string) *Element {
	if d == nil || d.root == nil {
		return nil
	}
	node := findByID(d.root, id)
	if node == nil {
		return nil
	}
	return &Element{node: node, doc: d}
}

// Form returns the form element with the given id.
func (d *Document) Form(id string) (*Form, bool) {
	el := d.ElementByID(id)
	if el == nil || el.node.Data != "form" {
		return nil, false
	}
	return &Form{el: el}, true
}

// Render writes the serialized document to w.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return errors.New("dom: document is empty")
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// String returns the serialized document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) filesFor(node *html.Node) []File {
	if d.files == nil {
		return nil
	}
	return d.files[node]
}

func (d *Document) setFiles(node *html.Node, files []File) {
	if d.files == nil {
		d.files = make(map[*html.Node][]File)
	}
	if len(files) == 0 {
		delete(d.files, node)
		return
	}
	d.files[node] = append([]File(nil), files...)
}

func findByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	// XPath string literals cannot escape quotes; ids carrying both quote
	// kinds fall back to a tree walk.
	switch {
	case !strings.Contains(id, `"`):
		return htmlquery.FindOne(root, `//*[@id="`+id+`"]`)
	case !strings.Contains(id, `'`):
		return htmlquery.FindOne(root, `//*[@id='`+id+`']`)
	}
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// descend visits nodes in document order. When fn returns false the node's
// children are skipped and the visit continues with its next sibling.
func descend(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		descend(c, fn)
	}
}

// walk visits nodes in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
