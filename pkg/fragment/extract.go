package fragment

import (
	"fmt"
	"io"

	"github.com/goliatone/go-formsubmit/pkg/dom"
)

// Extract parses body as an HTML document and returns the inner markup of the
// element carrying id. found is false when the document has no such element.
func Extract(body io.Reader, id string) (markup string, found bool, err error) {
	doc, err := dom.Parse(body)
	if err != nil {
		return "", false, fmt.Errorf("fragment: %w", err)
	}
	el := doc.ElementByID(id)
	if el == nil {
		return "", false, nil
	}
	return el.InnerHTML(), true, nil
}
