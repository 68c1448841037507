package geolib

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrResolverShutdown     = errors.New("resolver was shutdown")
	ErrTransportShutdown    = errors.New("transport was shutdown")
	ErrContextIsClosed      = errors.New("context is closed")
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

	// ErrCircuitBreakerIgnore is returned by a circuit breaker callback
	// if error should not be counted as a failure of the target.
	ErrCircuitBreakerIgnore = errors.New("circuit breaker should ignore this error")
)

type jsonHTTPError struct {
	Error struct {
		Message string  `json:"message"`
		Context string  `json:"context"`
		Query   *string `json:"query,omitempty"`
		Status  *Status `json:"status,omitempty"`
	} `json:"error"`
}

// httpError is an error response of the HTTP API. If it is caused by an
// unsuccessful lookup, lookup is set and its query and status are a
// part of the response.
type httpError struct {
	message    string
	err        error
	statusCode int
	lookup     *Information
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

// Lookup returns a result which caused this error.
func (h *httpError) Lookup() (Information, bool) {
	if h == nil || h.lookup == nil {
		return Information{}, false
	}

	return *h.lookup, true
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}

	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	if info, ok := h.Lookup(); ok {
		query := info.Query()
		status := info.Status()
		value.Error.Query = &query
		value.Error.Status = &status
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(&value)
}

// newLookupError describes an unsuccessful lookup. Message of the
// lookup becomes a context of the error.
func newLookupError(info Information, statusCode int) *httpError {
	rv := &httpError{
		message:    "Cannot resolve " + info.Query(),
		statusCode: statusCode,
		lookup:     &info,
	}

	if message, ok := info.Message(); ok {
		rv.err = errors.New(message)
	}

	return rv
}
