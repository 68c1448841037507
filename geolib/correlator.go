package geolib

import (
	"context"
	"errors"
	"net"
	"net/url"
	"path"
)

type correlator struct {
	registry   *registry
	logger     Logger
	usageStats *UsageStats
}

func (c *correlator) Run(ctx context.Context, completions <-chan Completion) {
	for {
		select {
		case <-ctx.Done():
			return
		case completion := <-completions:
			c.Process(completion)
		}
	}
}

// Process matches a completion with a pending entry and invokes its
// handlers. If there is no pending entry, completion is dropped: its
// handlers were already called by timeout governor or by shutdown.
func (c *correlator) Process(completion Completion) {
	key := completionKey(completion.URL)

	entry, ok := c.registry.Take(key)
	if !ok {
		c.logger.ResponseDropped(key)
		c.usageStats.Dropped()

		return
	}

	entry.stop()

	info := c.classify(key, completion)

	c.usageStats.Used(info.Status())
	entry.deliver(info)
}

func (c *correlator) classify(key string, completion Completion) Information {
	if completion.Err == nil {
		return Parse(key, completion.Body)
	}

	c.logger.LookupError(key, completion.Err)

	if isTimeoutError(completion.Err) {
		return NewTimeout(key, "Request timed out: "+completion.Err.Error())
	}

	return NewFail(key, "Request failed: "+completion.Err.Error())
}

func completionKey(u *url.URL) string {
	if u == nil {
		return ""
	}

	return path.Base(u.Path)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
