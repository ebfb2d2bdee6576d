package prompt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/dom"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	messages     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func entryPairs(entries []dom.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name+"="+e.Value)
	}
	return out
}

func TestFill_VoicePage(t *testing.T) {
	alice := testsupport.WriteFile(t, "alice.mp3", "a")
	bob := testsupport.WriteFile(t, "bob.mp3", "b")

	form, ok := dom.MustParseString(testsupport.VoicePage()).Form("voiceForm")
	if !ok {
		t.Fatalf("voiceForm missing")
	}
	driver := &stubDriver{
		inputs:    []string{alice + ", " + bob},
		selectIdx: []int{2, 0, 1},
	}

	submitter, err := Fill(context.Background(), driver, form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if submitter != "generate" {
		t.Fatalf("submitter = %q, want generate", submitter)
	}

	want := []string{"audio_files=alice.mp3", "audio_files=bob.mp3", "emotion=calm", "rate=slow"}
	if diff := cmp.Diff(want, entryPairs(form.Entries())); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	wantPrompts := []string{"Audio samples", "Emotion", "Speech rate", "Submit with"}
	if diff := cmp.Diff(wantPrompts, driver.messages); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_RetriesInvalidFilePath(t *testing.T) {
	path := testsupport.WriteFile(t, "sample.mp3", "x")
	form, _ := dom.MustParseString(testsupport.VoicePage()).Form("voiceForm")
	driver := &stubDriver{
		inputs:    []string{filepath.Join(t.TempDir(), "missing.mp3"), path},
		selectIdx: []int{0, 1, 0},
	}

	submitter, err := Fill(context.Background(), driver, form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if submitter != "upload" {
		t.Fatalf("submitter = %q, want upload", submitter)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one validation message, got %v", driver.infoMessages)
	}
	want := []string{"audio_files=sample.mp3", "emotion=None", "rate=medium"}
	if diff := cmp.Diff(want, entryPairs(form.Entries())); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_CheckboxRadioTextArea(t *testing.T) {
	doc := dom.MustParseString(`<form id="f">
		<input type="text" name="title" value="draft" required>
		<input type="checkbox" name="agree">
		<input type="checkbox" name="news" value="yes" checked>
		<input type="radio" name="size" value="s" checked>
		<input type="radio" name="size" value="l">
		<select name="tags" multiple><option>a</option><option>b</option><option>c</option></select>
		<textarea name="notes"></textarea>
		<input type="hidden" name="token" value="abc">
		<button name="save">Save</button>
	</form>`)
	form, _ := doc.Form("f")
	driver := &stubDriver{
		inputs:    []string{"", "final"},
		confirm:   []bool{true, false},
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{"hello"},
	}

	submitter, err := Fill(context.Background(), driver, form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if submitter != "save" {
		t.Fatalf("submitter = %q, want save", submitter)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected required title to be re-prompted, got %v", driver.infoMessages)
	}

	want := []string{"title=final", "agree=on", "size=l", "tags=a", "tags=c", "notes=hello", "token=abc"}
	if diff := cmp.Diff(want, entryPairs(form.Entries())); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_PropagatesAbort(t *testing.T) {
	form, _ := dom.MustParseString(testsupport.VoicePage()).Form("voiceForm")
	driver := &stubDriver{err: ErrAborted}

	if _, err := Fill(context.Background(), driver, form); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFill_RequiresSubmitter(t *testing.T) {
	form, _ := dom.MustParseString(`<form id="f"><input type="text" name="q"></form>`).Form("f")
	driver := &stubDriver{inputs: []string{"x"}}

	if _, err := Fill(context.Background(), driver, form); !errors.Is(err, ErrNoSubmitter) {
		t.Fatalf("expected ErrNoSubmitter, got %v", err)
	}
}
