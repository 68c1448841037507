package geolib

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Handler is a callback which gets a result of resolving. It is called
// exactly once per Resolve call, never on a goroutine of the caller.
type Handler func(Information)

// HTTPClient is an interface for http.Client-like entities. You
// usually want to use NewHTTPClient to get an instance.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Transport sends outbound requests and reports their outcome
// asynchronously.
//
// Send must not block on the network. Each successfully sent request
// has to result in exactly one Completion on a channel returned by
// Completions unless transport is shut down.
type Transport interface {
	Send(ctx context.Context, target *url.URL) error
	Completions() <-chan Completion
	Shutdown()
}

// Logger is an interface for the resolver events which are interesting
// to be logged. Please pay attention that these methods are called
// from different goroutines.
type Logger interface {
	LookupError(key string, err error)
	DispatchError(key string, err error)
	ResponseDropped(key string)
	ResponseTimeout(key string, timeout time.Duration)
}

type noopLogger struct{}

func (noopLogger) LookupError(string, error)             {}
func (noopLogger) DispatchError(string, error)           {}
func (noopLogger) ResponseDropped(string)                {}
func (noopLogger) ResponseTimeout(string, time.Duration) {}

// NewNoopLogger returns a logger which discards everything.
func NewNoopLogger() Logger {
	return noopLogger{}
}
