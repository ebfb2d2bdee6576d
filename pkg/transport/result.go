package transport

import (
	"fmt"
)

// FallbackMarkup replaces the result region when a successful response has
// no result element. Its text content reads
// "Error: No result message found in response.".
const FallbackMarkup = "<h3>Error:</h3> <p>No result message found in response.</p>"

// Kind discriminates submission results.
type Kind int

const (
	// Success carries the extracted fragment.
	Success Kind = iota
	// Fallback is a 2xx response without a result element.
	Fallback
	// HTTPError is a non-2xx response.
	HTTPError
	// NetworkError covers transport failures, unreadable bodies and
	// cancellation.
	NetworkError
	// Rejected means the request failed the contract check and was not sent.
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Fallback:
		return "fallback"
	case HTTPError:
		return "http_error"
	case NetworkError:
		return "network_error"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one submission.
type Result struct {
	Kind      Kind
	Status    int
	Fragment  string
	Err       error
	RequestID string
}

// Failed reports whether the result is a failure rendered as an error.
func (r Result) Failed() bool {
	return r.Kind == HTTPError || r.Kind == NetworkError || r.Kind == Rejected
}

// Message describes a failure; it is empty for successes.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.Code)
}
