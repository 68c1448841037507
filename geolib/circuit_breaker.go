package geolib

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

const (
	circuitBreakerStateClosed uint32 = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

type circuitBreakerIgnoredError struct {
	err error
}

func (c circuitBreakerIgnoredError) Error() string {
	return c.err.Error()
}

func (c circuitBreakerIgnoredError) Unwrap() error {
	return c.err
}

func (c circuitBreakerIgnoredError) Is(target error) bool {
	return target == ErrCircuitBreakerIgnore
}

// ignoreError marks an error as one which is not a fault of the target.
// Error message stays the same.
func ignoreError(err error) error {
	return circuitBreakerIgnoredError{err: err}
}

type circuitBreaker struct {
	// state and halfOpenAttempts are read without a lock on a hot path
	// but written only under the mutex.
	state            uint32
	halfOpenAttempts uint32

	mutex                sync.Mutex
	clock                clock.Clock
	halfOpenTimer        *clock.Timer
	failuresCleanupTimer *clock.Timer
	failuresCount        uint32

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	switch atomic.LoadUint32(&c.state) {
	case circuitBreakerStateClosed:
		return c.doClosed(ctx, callback)
	case circuitBreakerStateHalfOpened:
		return c.doHalfOpened(ctx, callback)
	default:
		return nil, ErrCircuitBreakerOpened
	}
}

func (c *circuitBreaker) doClosed(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	resp, err := callback(ctx)
	if errors.Is(err, ErrCircuitBreakerIgnore) {
		return resp, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != circuitBreakerStateClosed {
		return resp, err
	}

	if err == nil {
		c.switchState(circuitBreakerStateClosed)

		return resp, nil
	}

	c.failuresCount++

	if c.failuresCount > c.openThreshold {
		c.switchState(circuitBreakerStateOpened)
	}

	return resp, err
}

func (c *circuitBreaker) doHalfOpened(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	if !atomic.CompareAndSwapUint32(&c.halfOpenAttempts, 0, 1) {
		return nil, ErrCircuitBreakerOpened
	}

	resp, err := callback(ctx)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != circuitBreakerStateHalfOpened {
		return resp, err
	}

	switch {
	case errors.Is(err, ErrCircuitBreakerIgnore):
		atomic.StoreUint32(&c.halfOpenAttempts, 0)
	case err != nil:
		c.switchState(circuitBreakerStateOpened)
	default:
		c.switchState(circuitBreakerStateClosed)
	}

	return resp, err
}

// switchState has to be called under the mutex.
func (c *circuitBreaker) switchState(state uint32) {
	switch state {
	case circuitBreakerStateClosed:
		c.stopTimer(&c.halfOpenTimer)
		c.ensureTimer(&c.failuresCleanupTimer, c.resetFailuresTimeout, c.resetFailures)
	case circuitBreakerStateHalfOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.stopTimer(&c.halfOpenTimer)
	case circuitBreakerStateOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.ensureTimer(&c.halfOpenTimer, c.halfOpenTimeout, c.tryHalfOpen)
	}

	c.failuresCount = 0

	atomic.StoreUint32(&c.halfOpenAttempts, 0)
	atomic.StoreUint32(&c.state, state)
}

func (c *circuitBreaker) resetFailures() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.failuresCleanupTimer = nil

	if c.state == circuitBreakerStateClosed {
		c.switchState(circuitBreakerStateClosed)
	}
}

func (c *circuitBreaker) tryHalfOpen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.halfOpenTimer = nil

	if c.state == circuitBreakerStateOpened {
		c.switchState(circuitBreakerStateHalfOpened)
	}
}

func (c *circuitBreaker) stopTimer(timerRef **clock.Timer) {
	if *timerRef == nil {
		return
	}

	(*timerRef).Stop()
	*timerRef = nil
}

func (c *circuitBreaker) ensureTimer(timerRef **clock.Timer, timeout time.Duration, callback func()) {
	if *timerRef == nil {
		*timerRef = c.clock.AfterFunc(timeout, callback)
	}
}

// Shutdown stops all pending timers.
func (c *circuitBreaker) Shutdown() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopTimer(&c.failuresCleanupTimer)
	c.stopTimer(&c.halfOpenTimer)
}

func newCircuitBreaker(clk clock.Clock,
	openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	cb := &circuitBreaker{
		clock:                clk,
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}

	cb.mutex.Lock()
	cb.switchState(circuitBreakerStateClosed)
	cb.mutex.Unlock()

	return cb
}
