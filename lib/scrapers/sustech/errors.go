package sustech

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ErrUnexpectedPage is returned when a page the protocol depends on no longer
// contains the form or table it is scraped for.
var ErrUnexpectedPage = errors.New("unexpected page structure")

// ErrSessionConsumed is returned when Login is called on a Session that has
// already been used to login.
var ErrSessionConsumed = errors.New("session has already been used to login")

// LoginError means the CAS server rejected the credentials.
type LoginError struct {
	// Message is the portal's own error banner, or "server returned <status>"
	// if it could not be found.
	Message string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("cannot login: %s", e.Message)
}

// TransportError means a request could not be completed or the server
// answered with an error status, it says nothing about the credentials.
type TransportError struct {
	Op  string
	Url string
	// StatusCode is 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s", e.Op, e.Url, e.Err.Error())
	}
	return fmt.Sprintf("%s (%s): server returned %d", e.Op, e.Url, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// checkResponse turns a failed request or a non-2xx response into a *TransportError.
func checkResponse(op, url string, res *resty.Response, err error) error {
	if err != nil {
		return &TransportError{Op: op, Url: url, Err: err}
	}
	status := res.StatusCode()
	if status < 200 || status >= 300 {
		return &TransportError{Op: op, Url: url, StatusCode: status}
	}
	return nil
}
