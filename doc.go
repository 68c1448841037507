// Peergeo is a service to resolve geolocation data for IP addresses
// and hostnames with an online geolocation API (ip-api.com by default).
//
// It is organized into 2 logical parts:
//
// # Geolib
//
// geolib is a main package of the application. It contains Resolver
// which sends lookups asynchronously and correlates responses with
// pending handlers, a parser of the service payloads and an HTTP API.
// It can be used as a library.
//
// # Peergeo
//
// A main package itself wires geolib with a config file, structured
// logging and prometheus metrics. It has 2 commands: serve starts an
// HTTP server, resolve prints results for given keys and exits.
package main
