// Package ai implements the OpenRouter integration: deterministic
// prompt construction, the chat-completion gateway and strict schema
// validation of model output.  Handlers translate the two error types
// defined here into 503 and 422 responses respectively.
package ai

import (
	"fmt"
	"strings"
)

// UnavailableError signals that the upstream model service could not
// be reached or refused the request: missing credential, transport
// failure, or a non-success HTTP status.  StatusCode and Body carry
// upstream diagnostics when a response was received; both are zero
// values otherwise.
type UnavailableError struct {
	Message    string
	StatusCode int
	Body       string
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (upstream status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// InvalidResponseError signals that the upstream call succeeded at the
// transport level but the returned content violates the expected
// contract.  Fields lists every violated field; the payload is never
// partially accepted.
type InvalidResponseError struct {
	Message string
	Fields  []string
}

func (e *InvalidResponseError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}
