package payload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/dom"
)

// Encoded is a serialized multipart body.
type Encoded struct {
	Body        []byte
	ContentType string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode serializes the payload as multipart/form-data. Files are opened and
// read in entry order; empty file selections produce an empty part with an
// empty filename, as browsers send them.
func (p *Payload) Encode() (Encoded, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, e := range p.entries {
		if e.File == nil {
			if err := w.WriteField(e.Name, e.Value); err != nil {
				return Encoded{}, fmt.Errorf("payload: write field %q: %w", e.Name, err)
			}
			continue
		}
		if err := writeFile(w, e.Name, *e.File); err != nil {
			return Encoded{}, err
		}
	}

	if err := w.Close(); err != nil {
		return Encoded{}, fmt.Errorf("payload: close writer: %w", err)
	}
	return Encoded{Body: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}

func writeFile(w *multipart.Writer, name string, file dom.File) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("payload: create part %q: %w", name, err)
	}
	rc, err := file.Reader()
	if err != nil {
		return fmt.Errorf("payload: open %q: %w", file.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("payload: copy %q: %w", file.Name, err)
	}
	return nil
}
