package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/transport"
	"github.com/goliatone/go-formsubmit/pkg/uistate"
)

func TestRenderSuccess(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out := controller.Outcome{
		Token:  1,
		Action: "generate",
		Result: transport.Result{Kind: transport.Success, Status: 200, Fragment: "<p>done</p>", RequestID: "req-9"},
		State:  uistate.ResultState("<p>done</p>"),
	}

	var buf bytes.Buffer
	summary := FromOutcome("http://localhost:5000/", out, []string{"emotion = calm", "generate = "}, " Audio <ready> ")
	if err := r.Render(&buf, summary); err != nil {
		t.Fatalf("render: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"submitted generate to http://localhost:5000/",
		"request: req-9",
		"state: result (HTTP 200)",
		"  emotion = calm",
		"result:\nAudio <ready>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in report:\n%s", want, got)
		}
	}
	if strings.Contains(got, "error:") {
		t.Fatalf("unexpected error line:\n%s", got)
	}
}

func TestRenderFailureAndStale(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	failed := controller.Outcome{
		Result: transport.Result{Kind: transport.HTTPError, Status: 500, Err: &transport.StatusError{Code: 500}},
		State:  uistate.ErrorState("HTTP error! Status: 500"),
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, FromOutcome("http://x/", failed, nil, "")); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"(no submitter)", "error: HTTP error! Status: 500", "(empty)"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in report:\n%s", want, buf.String())
		}
	}

	stale := controller.Outcome{
		Action: "upload",
		Result: transport.Result{Kind: transport.NetworkError, Err: errors.New("boom")},
		Stale:  true,
	}
	buf.Reset()
	if err := r.Render(&buf, FromOutcome("http://x/", stale, nil, "")); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "superseded by a later submission") || strings.Contains(buf.String(), "error: boom") {
		t.Fatalf("unexpected stale report:\n%s", buf.String())
	}
}

func TestCustomTemplate(t *testing.T) {
	files := fstest.MapFS{
		"short.tpl": {Data: []byte(`{{ state }}:{{ action }}`)},
	}
	r, err := New(WithFS(files), WithTemplate("short.tpl"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, Summary{State: "error", Action: "upload"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "error:upload" {
		t.Fatalf("report = %q", buf.String())
	}

	if _, err := New(WithFS(files), WithTemplate("missing.tpl")); err == nil {
		t.Fatalf("expected missing template to fail")
	}
}
