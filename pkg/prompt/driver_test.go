package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
)

func TestSurveyDriverHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewSurveyDriver()
	cfg := SelectConfig{Message: "Emotion", Options: []string{"calm", "happy"}, Defaults: []int{1}}

	if _, err := d.Select(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("Select: expected context.Canceled, got %v", err)
	}
	if _, err := d.MultiSelect(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("MultiSelect: expected context.Canceled, got %v", err)
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	if err := translateSurveyErr(terminal.InterruptErr); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	other := errors.New("tty gone")
	if err := translateSurveyErr(other); err != other {
		t.Fatalf("expected error passed through, got %v", err)
	}
}
