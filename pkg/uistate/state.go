package uistate

import (
	"fmt"
	"html"
)

// Kind enumerates the UI states of a submission.
type Kind int

const (
	// Idle is the state before any submission.
	Idle Kind = iota
	// Loading means a request is in flight.
	Loading
	// Result means a fragment was received and shown.
	Result
	// Error means the submission failed.
	Error
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Result:
		return "result"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is the UI state of the page region owned by the controller. Content
// holds trusted markup for Result; Message holds plain text for Error.
type State struct {
	Kind    Kind
	Content string
	Message string
}

// IdleState returns the initial state.
func IdleState() State { return State{Kind: Idle} }

// LoadingState returns the in-flight state.
func LoadingState() State { return State{Kind: Loading} }

// ResultState returns a terminal state showing markup.
func ResultState(markup string) State { return State{Kind: Result, Content: markup} }

// ErrorState returns a terminal state showing a failure description.
func ErrorState(message string) State { return State{Kind: Error, Message: message} }

// Terminal reports whether the state ends a submission.
func (s State) Terminal() bool {
	return s.Kind == Result || s.Kind == Error
}

// View is what the page shows for a state.
type View struct {
	SpinnerVisible bool
	ResultVisible  bool
	// ReplaceContent is true when Markup replaces the result region's
	// children; otherwise the region keeps its current markup.
	ReplaceContent bool
	Markup         string
}

// ErrorMarkup formats a failure the way the result region shows it. The text
// content reads "Error: Failed to process request: <message>".
func ErrorMarkup(message string) string {
	return "<h3>Error:</h3> <p>Failed to process request: " + html.EscapeString(message) + "</p>"
}

// Render maps a state to the visible page. It is pure: the same state always
// yields the same view.
func Render(s State) View {
	switch s.Kind {
	case Loading:
		return View{SpinnerVisible: true}
	case Result:
		return View{ResultVisible: true, ReplaceContent: true, Markup: s.Content}
	case Error:
		return View{ResultVisible: true, ReplaceContent: true, Markup: ErrorMarkup(s.Message)}
	default:
		return View{}
	}
}
