package teller

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoSession is returned when a protected operation is attempted without a
// stored session credential.
var ErrNoSession = errors.New("no stored session")

// ErrBusy is returned by Controller.Submit while another operation is still in
// flight. No request is issued for the rejected submission.
var ErrBusy = errors.New("another operation is already in flight")

// ValidationError reports input rejected locally, before any request is issued.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ServerError reports a completed round trip that the service rejected.
// Message carries the service's structured {message} body when it sent one.
// SessionExpired is set when a protected request was rejected because the
// stored credential no longer works; a rejected login is not an expired
// session.
type ServerError struct {
	Status         int
	Message        string
	SessionExpired bool
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected the request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected the request (%d)", e.Status)
}

// Unauthorized reports whether the rejection means the session credential is
// invalid or expired.
func (e *ServerError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// TransportError reports a request for which no response was received:
// connectivity, DNS, timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("request failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Kind tells a presenter how a failure should be framed.
type Kind int

const (
	// KindValidation: rejected locally, nothing was sent.
	KindValidation Kind = iota
	// KindRejected: the round trip completed and the service said no.
	KindRejected
	// KindTransport: no response was received.
	KindTransport
	// KindUnauthorized: the session credential is invalid or expired.
	KindUnauthorized
)

// UserMessage is the presentable classification of a failure. It decouples
// classification from display so the core is testable without a terminal.
type UserMessage struct {
	Kind Kind
	Text string
}

// genericRetry is shown whenever there is no structured message to surface.
const genericRetry = "Something went wrong. Please try again."

// Classify maps a failure to its user-facing message. Structured server
// messages are surfaced verbatim; transport failures get a generic retry
// prompt; authorization failures tell the user to log in again.
func Classify(err error) UserMessage {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return UserMessage{Kind: KindValidation, Text: validation.Reason}
	}
	var server *ServerError
	if errors.As(err, &server) {
		if server.SessionExpired {
			return UserMessage{Kind: KindUnauthorized, Text: "Your session has expired. Please log in again."}
		}
		if server.Message != "" {
			return UserMessage{Kind: KindRejected, Text: server.Message}
		}
		return UserMessage{Kind: KindRejected, Text: genericRetry}
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return UserMessage{Kind: KindTransport, Text: genericRetry}
	}
	if errors.Is(err, ErrNoSession) {
		return UserMessage{Kind: KindUnauthorized, Text: "You are not logged in. Please run 'tlr login' first."}
	}
	if errors.Is(err, ErrBusy) {
		return UserMessage{Kind: KindValidation, Text: "An operation is already in progress. Please wait for it to finish."}
	}
	return UserMessage{Kind: KindRejected, Text: genericRetry}
}
