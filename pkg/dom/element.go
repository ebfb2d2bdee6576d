package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Element wraps an element node of a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

// Node exposes the wrapped node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag reports the element's tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// ID reports the element's id attribute.
func (e *Element) ID() string {
	return attr(e.node, "id")
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	if !hasAttr(e.node, key) {
		return "", false
	}
	return attr(e.node, key), true
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, value string) {
	setAttr(e.node, key, value)
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	return htmlquery.OutputHTML(e.node, false)
}

// SetInnerHTML replaces the element's children with the parsed markup. The
// markup is parsed in the context of the element, as a browser would.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("dom: set inner html: %w", err)
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// TextContent returns the concatenated text of the element's descendants.
func (e *Element) TextContent() string {
	return htmlquery.InnerText(e.node)
}

// Show sets the inline display property to block.
func (e *Element) Show() {
	e.SetDisplay("block")
}

// Hide sets the inline display property to none.
func (e *Element) Hide() {
	e.SetDisplay("none")
}

// SetDisplay rewrites the inline display property, keeping other inline
// declarations intact.
func (e *Element) SetDisplay(value string) {
	style := setStyleProperty(attr(e.node, "style"), "display", value)
	if style == "" {
		removeAttr(e.node, "style")
		return
	}
	setAttr(e.node, "style", style)
}

// Displayed reports whether the element would be rendered, judging only by
// its own hidden attribute and inline display property.
func (e *Element) Displayed() bool {
	display, ok := styleProperty(attr(e.node, "style"), "display")
	if ok {
		return display != "none"
	}
	return !hasAttr(e.node, "hidden")
}

type declaration struct {
	name  string
	value string
}

func parseStyle(style string) []declaration {
	var out []declaration
	for _, part := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, declaration{name: name, value: strings.TrimSpace(value)})
	}
	return out
}

func styleProperty(style, name string) (string, bool) {
	decls := parseStyle(style)
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].name == name {
			return strings.ToLower(decls[i].value), true
		}
	}
	return "", false
}

func setStyleProperty(style, name, value string) string {
	decls := parseStyle(style)
	out := make([]string, 0, len(decls)+1)
	for _, d := range decls {
		if d.name == name {
			continue
		}
		out = append(out, d.name+": "+d.value)
	}
	if value != "" {
		out = append(out, name+": "+value)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "; ") + ";"
}
