// This package provides a set of structs and functions which are used
// to annotate peer IP addresses with geolocation data fetched from a
// third-party HTTP service.
//
// geolib is core of the peergeo project. You can treat the rest of the
// application as an _example_ on how to use this library: how to read
// a configuration, how to log, how to expose a resolver over HTTP.
//
// Resolver is a main entity of the geolib. It accepts a key (an IP
// address or a host) and a handler, sends a request through a Transport
// and returns immediately. Transport delivers Completion events on a
// channel, a pool of correlator goroutines matches them with pending
// handlers and each handler gets exactly one Information value: either
// a success with SuccessData, a failure with a message or a timeout.
//
// If the same key is resolved several times before a response arrives,
// all handlers are attached to the same in-flight request and receive
// the same result.
package geolib
