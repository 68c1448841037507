package geolib

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultEndpoint is ip-api.com JSON API. Key is appended as the
	// last path segment.
	DefaultEndpoint = "http://ip-api.com/json/"

	DefaultTimeout           = 10 * time.Second
	DefaultCorrelatorWorkers = 4
)

var (
	errKeyIsEmpty      = errors.New("key is empty")
	errKeyHasSlash     = errors.New("key contains a slash")
	errKeyIsDotSegment = errors.New("key is a dot segment")
	errNoTransport     = errors.New("transport is not defined")
	errEndpointNotHTTP = errors.New("endpoint must be an absolute http(s) URL")
)

// ResolverOpts is a set of options for NewResolver. Only Transport is
// mandatory.
type ResolverOpts struct {
	// Endpoint is a base URL of the geolocation service. Key is
	// appended to its path.
	Endpoint string

	// Parameters are added to a query string of each request. For
	// ip-api.com it could be lang, for example.
	Parameters map[string]string

	Transport Transport
	Logger    Logger

	// Timeout defines how long resolver waits for a response before it
	// calls handlers with StatusTimeout.
	Timeout time.Duration

	CorrelatorWorkers int
	Clock             clock.Clock
}

// Resolver annotates keys (IP addresses, hosts) with geolocation data
// asynchronously.
type Resolver struct {
	logger     Logger
	transport  Transport
	endpoint   url.URL
	timeout    time.Duration
	clock      clock.Clock
	registry   *registry
	usageStats *UsageStats
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	closed     bool
}

// Resolve starts a lookup of the key and returns immediately. Handler
// is called exactly once, on some other goroutine, when result is
// known.
//
// If the key is already being resolved, handler is attached to the
// in-flight request and no new request is sent.
func (r *Resolver) Resolve(key string, handler Handler) {
	if handler == nil {
		handler = func(Information) {}
	}

	if err := validateKey(key); err != nil {
		r.deliverAsync(handler, NewFail(key, "Invalid key: "+err.Error()))

		return
	}

	r.rwmutex.RLock()
	defer r.rwmutex.RUnlock()

	if r.closed {
		r.deliverAsync(handler, NewFail(key, ErrResolverShutdown.Error()))

		return
	}

	var (
		ctx   context.Context
		entry *pendingEntry
	)

	created := r.registry.Insert(key, handler, func() *pendingEntry {
		entry = &pendingEntry{}
		ctx, entry.cancel = context.WithCancel(r.ctx)
		entry.timer = r.clock.AfterFunc(r.timeout, func() {
			r.expire(key, entry)
		})

		return entry
	})
	if !created {
		return
	}

	if err := r.transport.Send(ctx, r.buildURL(key)); err != nil {
		r.logger.DispatchError(key, err)

		if r.registry.TakeEntry(key, entry) {
			entry.stop()

			info := NewFail(key, "Cannot send a request: "+err.Error())

			r.usageStats.Used(info.Status())

			go entry.deliver(info)
		}
	}
}

// Lookup is a blocking version of Resolve. It returns an error only if
// context is closed before a result is known.
func (r *Resolver) Lookup(ctx context.Context, key string) (Information, error) {
	resultChannel := make(chan Information, 1)

	r.Resolve(key, func(info Information) {
		resultChannel <- info
	})

	select {
	case <-ctx.Done():
		return Information{}, fmt.Errorf("%w: %w", ErrContextIsClosed, ctx.Err())
	case info := <-resultChannel:
		return info, nil
	}
}

// LookupAll resolves all keys concurrently. Results have the same order
// as keys.
func (r *Resolver) LookupAll(ctx context.Context, keys []string) ([]Information, error) {
	type indexedResult struct {
		index int
		info  Information
	}

	resultChannel := make(chan indexedResult, len(keys))

	for i, key := range keys {
		r.Resolve(key, func(info Information) {
			resultChannel <- indexedResult{index: i, info: info}
		})
	}

	rv := make([]Information, len(keys))

	for range keys {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrContextIsClosed, ctx.Err())
		case res := <-resultChannel:
			rv[res.index] = res.info
		}
	}

	return rv, nil
}

// Pending returns a number of keys which wait for responses.
func (r *Resolver) Pending() int {
	return r.registry.Len()
}

// Closed reports if Shutdown was called.
func (r *Resolver) Closed() bool {
	r.rwmutex.RLock()
	defer r.rwmutex.RUnlock()

	return r.closed
}

func (r *Resolver) UsageStats() *UsageStats {
	return r.usageStats
}

// Shutdown stops resolver. All pending handlers are called with a
// failure, all later Resolve calls fail immediately.
func (r *Resolver) Shutdown() {
	r.rwmutex.Lock()
	r.closed = true
	r.rwmutex.Unlock()

	r.closeOnce.Do(func() {
		r.cancel()
		r.transport.Shutdown()
		r.wg.Wait()

		for key, entry := range r.registry.TakeAll() {
			entry.stop()
			r.usageStats.Used(StatusFail)
			entry.deliver(NewFail(key, ErrResolverShutdown.Error()))
		}
	})
}

func (r *Resolver) expire(key string, entry *pendingEntry) {
	if !r.registry.TakeEntry(key, entry) {
		return
	}

	entry.stop()
	r.logger.ResponseTimeout(key, r.timeout)
	r.usageStats.Used(StatusTimeout)
	entry.deliver(NewTimeout(key, fmt.Sprintf("Request timed out after %s", r.timeout)))
}

func (r *Resolver) deliverAsync(handler Handler, info Information) {
	r.usageStats.Used(info.Status())

	go handler(info)
}

func (r *Resolver) buildURL(key string) *url.URL {
	target := r.endpoint
	target.Path = strings.TrimSuffix(target.Path, "/") + "/" + key
	target.RawPath = ""

	return &target
}

func validateKey(key string) error {
	switch {
	case key == "":
		return errKeyIsEmpty
	case strings.Contains(key, "/"):
		return errKeyHasSlash
	case key == "." || key == "..":
		return errKeyIsDotSegment
	}

	return nil
}

func parseEndpoint(endpoint string, parameters map[string]string) (url.URL, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return url.URL{}, fmt.Errorf("cannot parse endpoint: %w", err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return url.URL{}, errEndpointNotHTTP
	}

	query := parsed.Query()

	for k, v := range parameters {
		query.Set(k, v)
	}

	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""

	return *parsed, nil
}

func NewResolver(opts ResolverOpts) (*Resolver, error) {
	if opts.Transport == nil {
		return nil, errNoTransport
	}

	endpoint, err := parseEndpoint(opts.Endpoint, opts.Parameters)
	if err != nil {
		return nil, fmt.Errorf("incorrect endpoint: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rv := &Resolver{
		logger:    opts.Logger,
		transport: opts.Transport,
		endpoint:  endpoint,
		timeout:   opts.Timeout,
		clock:     opts.Clock,
		registry:  newRegistry(),
		usageStats: &UsageStats{
			Name: endpoint.Host,
		},
		ctx:    ctx,
		cancel: cancel,
	}

	if rv.logger == nil {
		rv.logger = NewNoopLogger()
	}

	if rv.timeout <= 0 {
		rv.timeout = DefaultTimeout
	}

	if rv.clock == nil {
		rv.clock = clock.New()
	}

	workers := opts.CorrelatorWorkers
	if workers <= 0 {
		workers = DefaultCorrelatorWorkers
	}

	corr := &correlator{
		registry:   rv.registry,
		logger:     rv.logger,
		usageStats: rv.usageStats,
	}

	rv.wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer rv.wg.Done()

			corr.Run(ctx, rv.transport.Completions())
		}()
	}

	return rv, nil
}
