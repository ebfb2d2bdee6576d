package contract

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/goliatone/go-formsubmit/pkg/payload"
)

// BuiltinVoiceForm names the embedded contract of the voice cloning form.
const BuiltinVoiceForm = "builtin:voiceform"

//go:embed voiceform.yaml
var voiceFormSpec []byte

// ErrNoOperation is returned when the contract does not describe the request.
var ErrNoOperation = errors.New("contract: operation not described")

// Contract validates outgoing submissions against an OpenAPI document.
type Contract struct {
	doc *openapi3.T
}

// Load parses and validates an OpenAPI document.
func Load(ctx context.Context, data []byte) (*Contract, error) {
	if len(data) == 0 {
		return nil, errors.New("contract: document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: invalid document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}
	return &Contract{doc: doc}, nil
}

// Open resolves a contract location: BuiltinVoiceForm or a file path.
func Open(ctx context.Context, location string) (*Contract, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, errors.New("contract: location is required")
	case location == BuiltinVoiceForm:
		return VoiceForm(ctx)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", location, err)
	}
	return Load(ctx, data)
}

// VoiceForm returns the embedded voice cloning form contract.
func VoiceForm(ctx context.Context) (*Contract, error) {
	return Load(ctx, voiceFormSpec)
}

// Validate checks an encoded multipart request against the operation the
// contract declares for method and the target's path.
func (c *Contract) Validate(ctx context.Context, method, target string, enc payload.Encoded) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("contract: parse target: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	item, op, err := c.operation(method, path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(enc.Body))
	if err != nil {
		return fmt.Errorf("contract: build request: %w", err)
	}
	req.Header.Set("Content-Type", enc.ContentType)

	input := &openapi3filter.RequestValidationInput{
		Request: req,
		Route: &routers.Route{
			Spec:      c.doc,
			Path:      path,
			PathItem:  item,
			Method:    method,
			Operation: op,
		},
		Options: &openapi3filter.Options{
			ExcludeRequestSecurity: true,
		},
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	return nil
}

// Field is a multipart property the contract declares for an operation.
type Field struct {
	Name  string
	Enum  []string
	Array bool
}

// Fields lists the multipart/form-data properties of the operation declared
// for method and path, sorted by name.
func (c *Contract) Fields(method, path string) ([]Field, error) {
	_, op, err := c.operation(method, path)
	if err != nil {
		return nil, err
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, nil
	}
	media := op.RequestBody.Value.Content.Get("multipart/form-data")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, nil
	}

	props := media.Schema.Value.Properties
	out := make([]Field, 0, len(props))
	for name, ref := range props {
		if ref == nil || ref.Value == nil {
			continue
		}
		schema := ref.Value
		field := Field{Name: name}
		if schema.Type.Is(openapi3.TypeArray) {
			field.Array = true
			if schema.Items != nil && schema.Items.Value != nil {
				schema = schema.Items.Value
			}
		}
		for _, v := range schema.Enum {
			field.Enum = append(field.Enum, fmt.Sprint(v))
		}
		out = append(out, field)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Contract) operation(method, path string) (*openapi3.PathItem, *openapi3.Operation, error) {
	item := c.doc.Paths.Find(path)
	if item == nil {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrNoOperation, method, path)
	}
	op := item.GetOperation(method)
	if op == nil {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrNoOperation, method, path)
	}
	return item, op, nil
}
