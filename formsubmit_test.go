package formsubmit_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/goliatone/go-formsubmit"
	"github.com/goliatone/go-formsubmit/pkg/contract"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/dom"
	"github.com/goliatone/go-formsubmit/pkg/fragment"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
	"github.com/goliatone/go-formsubmit/pkg/transport"
	"github.com/goliatone/go-formsubmit/pkg/uistate"
)

func TestOpenAndSubmit(t *testing.T) {
	srv := testsupport.NewServer(t, testsupport.VoicePage(),
		testsupport.Respond(http.StatusOK, testsupport.ResultPage(`<p>Audio ready</p>`)))

	session, err := formsubmit.Open(context.Background(), srv.PageURL())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	out, err := session.Submit(context.Background(), "generate")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.State.Kind != uistate.Result || out.Result.Kind != transport.Success {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got := session.ResultText(); got != "Audio ready" {
		t.Fatalf("result text = %q", got)
	}

	var buf bytes.Buffer
	if err := session.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `<div id="resultMessage"><p>Audio ready</p></div>`) {
		t.Fatalf("rendered page missing result:\n%s", buf.String())
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one submission, got %d", len(reqs))
	}
	if _, ok := reqs[0].Fields["generate"]; !ok {
		t.Fatalf("expected generate action field, got %v", reqs[0].Fields)
	}
}

func TestOpenFailures(t *testing.T) {
	srv := testsupport.NewServer(t, testsupport.VoicePage(testsupport.WithoutForm()), nil)

	if _, err := formsubmit.Open(context.Background(), srv.PageURL()); !errors.Is(err, controller.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if _, err := formsubmit.Open(context.Background(), srv.PageURL(), formsubmit.WithContract("/no/such/contract.yaml")); err == nil {
		t.Fatalf("expected unreadable contract to fail")
	}
}

func voiceDocument(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc := dom.MustParseString(page)
	form, _ := doc.Form("voiceForm")
	if err := form.SetFiles("audio_files", dom.FileFromBytes("alice.mp3", []byte("ID3"))); err != nil {
		t.Fatalf("set files: %v", err)
	}
	return doc
}

func TestAttachWithContract(t *testing.T) {
	srv := testsupport.NewServer(t, testsupport.VoicePage(), nil)

	session, err := formsubmit.Attach(context.Background(), voiceDocument(t, testsupport.VoicePage()), srv.PageURL(),
		formsubmit.WithContract(contract.BuiltinVoiceForm))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	out, err := session.Submit(context.Background(), "upload")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Result.Kind != transport.Success {
		t.Fatalf("expected page defaults to pass the contract, got %+v", out.Result)
	}

	page := strings.Replace(testsupport.VoicePage(),
		`<option value="calm">calm</option>`, `<option value="furious" selected>furious</option>`, 1)
	session, err = formsubmit.Attach(context.Background(), voiceDocument(t, page), srv.PageURL(),
		formsubmit.WithContract(contract.BuiltinVoiceForm))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	out, err = session.Submit(context.Background(), "upload")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Result.Kind != transport.Rejected || out.State.Kind != uistate.Error {
		t.Fatalf("expected rejected submission, got %+v", out)
	}
	if !strings.HasPrefix(session.ResultText(), "Error: Failed to process request: ") {
		t.Fatalf("unexpected result text %q", session.ResultText())
	}
	if len(srv.Requests()) != 1 {
		t.Fatalf("expected rejected submission to stay local, got %d requests", len(srv.Requests()))
	}
}

func TestOptionsReachControllerAndTransport(t *testing.T) {
	page := `<html><body><form id="f"><button name="go">Go</button></form>` +
		`<span id="busy" style="display: none"></span><section id="out"></section></body></html>`
	srv := testsupport.NewServer(t, page, testsupport.Respond(http.StatusOK,
		`<html><body><section id="out"><b onclick="x()">hi</b></section></body></html>`))

	var seen []uistate.Kind
	session, err := formsubmit.Open(context.Background(), srv.PageURL(),
		formsubmit.WithIDs(formsubmit.IDs{Form: "f", Spinner: "busy", Result: "out"}),
		formsubmit.WithSubmitPath("/api/clone"),
		formsubmit.WithSanitizer(fragment.Passthrough),
		formsubmit.WithObserver(func(_ uint64, s uistate.State) { seen = append(seen, s.Kind) }),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := session.Submit(context.Background(), "go"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got := srv.Requests()[0].Path; got != "/api/clone" {
		t.Fatalf("path = %q", got)
	}
	var buf bytes.Buffer
	_ = session.Render(&buf)
	if !strings.Contains(buf.String(), `onclick="x()"`) {
		t.Fatalf("expected passthrough sanitizer to keep markup:\n%s", buf.String())
	}
	if len(seen) != 2 || seen[0] != uistate.Loading || seen[1] != uistate.Result {
		t.Fatalf("observer saw %v", seen)
	}
}
