package ai

import (
	"errors"
	"fmt"
)

// UpstreamError reports a non-success response from the completion or OCR
// endpoint, carrying the upstream status and raw body so the caller can
// surface a meaningful failure.
type UpstreamError struct {
	Service string // "completions" or "ocr"
	Status  int
	Body    string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: status %d: %s", e.Service, e.Status, e.Body)
}

// ErrNoCompletion is returned when the completion endpoint answers
// successfully but with no choices.
var ErrNoCompletion = errors.New("completion returned no choices")
