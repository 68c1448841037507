package geolib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultTransportPoolSize = 1024

	// MaxResponseBodySize limits a size of the body transport reads from
	// the geolocation service.
	MaxResponseBodySize = 1 << 20

	transportPoolExpireTime = time.Minute
)

// Completion is an event which is sent by Transport when outbound
// request is finished. URL is always the URL of the original request.
// If Err is not nil, the rest of fields are empty.
type Completion struct {
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

type httpTransport struct {
	client      HTTPClient
	pool        *ants.PoolWithFunc
	completions chan Completion
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

func (h *httpTransport) Send(ctx context.Context, target *url.URL) error {
	select {
	case <-h.ctx.Done():
		return ErrTransportShutdown
	default:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := h.pool.Invoke(req); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrTransportShutdown
		}

		return fmt.Errorf("cannot schedule a request: %w", err)
	}

	return nil
}

func (h *httpTransport) Completions() <-chan Completion {
	return h.completions
}

func (h *httpTransport) Shutdown() {
	h.closeOnce.Do(func() {
		h.cancel()
		h.pool.Release()

		if v, ok := h.client.(interface{ Shutdown() }); ok {
			v.Shutdown()
		}
	})
}

func (h *httpTransport) do(arg interface{}) {
	req := arg.(*http.Request)
	completion := h.execute(req)

	select {
	case <-h.ctx.Done():
	case h.completions <- completion:
	}
}

func (h *httpTransport) execute(req *http.Request) Completion {
	completion := Completion{
		URL: req.URL,
	}

	resp, err := h.client.Do(req)
	if err != nil {
		completion.Err = fmt.Errorf("cannot send a request: %w", err)

		return completion
	}

	defer flushResponse(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize))
	if err != nil {
		completion.Err = fmt.Errorf("cannot read a response: %w", err)

		return completion
	}

	completion.StatusCode = resp.StatusCode
	completion.Header = resp.Header
	completion.Body = body

	return completion
}

// NewHTTPTransport creates a transport which executes requests with
// a given client on a pool of goroutines. Pool does not block: if all
// workers are busy, Send returns an error.
func NewHTTPTransport(client HTTPClient, poolSize int) (Transport, error) {
	if poolSize <= 0 {
		poolSize = DefaultTransportPoolSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	rv := &httpTransport{
		client:      client,
		completions: make(chan Completion, poolSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	pool, err := ants.NewPoolWithFunc(poolSize, rv.do,
		ants.WithExpiryDuration(transportPoolExpireTime),
		ants.WithNonblocking(true))
	if err != nil {
		cancel()

		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.pool = pool

	return rv, nil
}
