package main

import (
	"io"
	"time"

	"github.com/9seconds/peergeo/geolib"
	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog   zerolog.Logger
	dispatchLog zerolog.Logger
}

func (l *logger) LookupError(key string, err error) {
	l.lookupLog.Warn().Str("key", key).Err(err).Msg("Lookup has failed")
}

func (l *logger) DispatchError(key string, err error) {
	l.dispatchLog.Error().Str("key", key).Err(err).Msg("Cannot send a request")
}

func (l *logger) ResponseDropped(key string) {
	l.lookupLog.Debug().Str("key", key).Msg("Nobody waits for this response")
}

func (l *logger) ResponseTimeout(key string, timeout time.Duration) {
	l.lookupLog.Warn().Str("key", key).Dur("timeout", timeout).Msg("Response has timed out")
}

func newLogger(w io.Writer, debug bool) geolib.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	base := zerolog.New(w).Level(level)

	return &logger{
		lookupLog:   base.With().Timestamp().Str("event_name", "lookup").Logger(),
		dispatchLog: base.With().Timestamp().Str("event_name", "dispatch").Logger(),
	}
}
