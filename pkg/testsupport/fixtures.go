package testsupport

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// PageOption trims elements from the voice page fixture.
type PageOption func(*pageConfig)

type pageConfig struct {
	form    bool
	spinner bool
	result  bool
	message string
}

// WithoutForm drops the voiceForm element.
func WithoutForm() PageOption {
	return func(cfg *pageConfig) { cfg.form = false }
}

// WithoutSpinner drops the loadingSpinner element.
func WithoutSpinner() PageOption {
	return func(cfg *pageConfig) { cfg.spinner = false }
}

// WithoutResult drops the resultMessage element.
func WithoutResult() PageOption {
	return func(cfg *pageConfig) { cfg.result = false }
}

// WithMessage seeds the result region with server-rendered markup.
func WithMessage(markup string) PageOption {
	return func(cfg *pageConfig) { cfg.message = markup }
}

// VoicePage returns the voice cloning page used across tests: an upload form
// with emotion and rate selects, two submit controls, a hidden spinner and a
// result region. Controls sit inside wrapper divs, the selects two levels
// deep and both buttons in one actions div.
func VoicePage(options ...PageOption) string {
	cfg := pageConfig{form: true, spinner: true, result: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Voice Cloning</title></head><body>`)
	if cfg.form {
		b.WriteString(`<form id="voiceForm" method="post" enctype="multipart/form-data">`)
		b.WriteString(`<div class="field"><label for="audio_files">Audio samples</label>`)
		b.WriteString(`<input type="file" id="audio_files" name="audio_files" accept=".mp3" multiple></div>`)
		b.WriteString(`<div class="options"><div class="field"><label for="emotion">Emotion</label>`)
		b.WriteString(`<select id="emotion" name="emotion">`)
		b.WriteString(`<option value="None">None</option><option value="cheerful">cheerful</option><option value="calm">calm</option>`)
		b.WriteString(`</select></div>`)
		b.WriteString(`<div class="field"><label for="rate">Speech rate</label>`)
		b.WriteString(`<select id="rate" name="rate">`)
		b.WriteString(`<option value="slow">slow</option><option value="medium" selected>medium</option><option value="fast">fast</option>`)
		b.WriteString(`</select></div></div>`)
		b.WriteString(`<div class="actions">`)
		b.WriteString(`<button type="submit" name="upload">Upload Audio</button>`)
		b.WriteString(`<button type="submit" name="generate">Generate Audio</button>`)
		b.WriteString(`</div>`)
		b.WriteString(`</form>`)
	}
	if cfg.spinner {
		b.WriteString(`<div id="loadingSpinner" style="display: none;">Processing...</div>`)
	}
	if cfg.result {
		b.WriteString(`<div id="resultMessage">`)
		b.WriteString(cfg.message)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// ResultPage wraps markup in the result region of a full response document.
func ResultPage(markup string) string {
	return `<!DOCTYPE html><html><body><h1>Voice Cloning</h1><div id="resultMessage">` +
		markup + `</div></body></html>`
}

// CapturedFile is a file part received by a Server.
type CapturedFile struct {
	Filename string
	Content  string
}

// CapturedRequest is a request received by a Server with its multipart body
// decoded.
type CapturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Fields map[string][]string
	Files  map[string][]CapturedFile
}

// Responder produces the response for a captured request.
type Responder func(w http.ResponseWriter, req CapturedRequest)

// Respond returns a Responder writing a fixed status and HTML body.
func Respond(status int, body string) Responder {
	return func(w http.ResponseWriter, _ CapturedRequest) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Server records every POST it receives and answers GET requests with a page.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []CapturedRequest
}

// NewServer starts a test server serving page on GET and delegating POSTs to
// respond. The server is closed when the test ends.
func NewServer(t *testing.T, page string, respond Responder) *Server {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, page)
			return
		}
		captured, err := capture(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, captured)
		s.mu.Unlock()
		if respond == nil {
			Respond(http.StatusOK, ResultPage("ok"))(w, captured)
			return
		}
		respond(w, captured)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the captured POST requests in arrival order.
func (s *Server) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CapturedRequest(nil), s.requests...)
}

// PageURL returns the root URL of the server.
func (s *Server) PageURL() string {
	return s.URL + "/"
}

func capture(r *http.Request) (CapturedRequest, error) {
	out := CapturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Fields: make(map[string][]string),
		Files:  make(map[string][]CapturedFile),
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return out, err
	}
	reader := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return out, err
		}
		name := part.FormName()
		if _, isFile := part.Header["Content-Type"]; isFile || part.FileName() != "" {
			out.Files[name] = append(out.Files[name], CapturedFile{
				Filename: part.FileName(),
				Content:  string(data),
			})
			continue
		}
		out.Fields[name] = append(out.Fields[name], string(data))
	}
}

// WriteFile writes content into a temporary directory owned by the test and
// returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
