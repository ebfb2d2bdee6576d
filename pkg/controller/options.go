package controller

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/pkg/uistate"
)

// IDs names the page elements the controller works with.
type IDs struct {
	Form    string
	Spinner string
	Result  string
}

// DefaultIDs returns the element ids of the voice cloning page.
func DefaultIDs() IDs {
	return IDs{
		Form:    "voiceForm",
		Spinner: "loadingSpinner",
		Result:  "resultMessage",
	}
}

// DefaultSubmitPath is the path submissions are posted to, resolved against
// the page URL.
const DefaultSubmitPath = "/"

// Observer is notified after every state the controller applies to the page.
// It runs while the page is locked and must not call back into the
// controller.
type Observer func(token uint64, state uistate.State)

// Option configures a Controller.
type Option func(*Controller)

// WithIDs overrides element ids. Empty ids keep their defaults.
func WithIDs(ids IDs) Option {
	return func(c *Controller) {
		if ids.Form != "" {
			c.ids.Form = ids.Form
		}
		if ids.Spinner != "" {
			c.ids.Spinner = ids.Spinner
		}
		if ids.Result != "" {
			c.ids.Result = ids.Result
		}
	}
}

// WithSubmitPath overrides the path submissions are posted to.
func WithSubmitPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.submitPath = path
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a state observer.
func WithObserver(fn Observer) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}
