package geolib

import (
	"context"
	"net/url"
	"time"

	"github.com/stretchr/testify/mock"
)

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(key string, err error) {
	m.Called(key, err)
}

func (m *LoggerMock) DispatchError(key string, err error) {
	m.Called(key, err)
}

func (m *LoggerMock) ResponseDropped(key string) {
	m.Called(key)
}

func (m *LoggerMock) ResponseTimeout(key string, timeout time.Duration) {
	m.Called(key, timeout)
}

type sentRequest struct {
	ctx context.Context
	url *url.URL
}

type TransportMock struct {
	mock.Mock

	sent        chan sentRequest
	completions chan Completion
}

func (m *TransportMock) Send(ctx context.Context, target *url.URL) error {
	err := m.Called(ctx, target).Error(0)
	if err == nil {
		m.sent <- sentRequest{ctx: ctx, url: target}
	}

	return err
}

func (m *TransportMock) Completions() <-chan Completion {
	return m.completions
}

func (m *TransportMock) Shutdown() {
	m.Called()
}

func newTransportMock() *TransportMock {
	return &TransportMock{
		sent:        make(chan sentRequest, 64),
		completions: make(chan Completion, 64),
	}
}
