package controller

import "errors"

var (
	// ErrFormNotFound signals the page has no form with the configured id.
	ErrFormNotFound = errors.New("controller: form not found")
	// ErrElementMissing signals the spinner or result element is absent at
	// submit time. No request is sent.
	ErrElementMissing = errors.New("controller: required element missing")
	// ErrUnknownSubmitter signals a submitter name that is not one of the
	// form's submit controls. No request is sent.
	ErrUnknownSubmitter = errors.New("controller: unknown submitter")
)
