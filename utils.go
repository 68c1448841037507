package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"

	"github.com/9seconds/peergeo/geolib"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeNewHTTPClient(conf *config) geolib.HTTPClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
		Jar:     jar,
	}

	return geolib.NewHTTPClient(httpClient,
		"peergeo/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}

func makeResolver(conf *config, logger geolib.Logger) (*geolib.Resolver, error) {
	transport, err := geolib.NewHTTPTransport(makeNewHTTPClient(conf), conf.GetWorkerPoolSize())
	if err != nil {
		return nil, fmt.Errorf("cannot create transport: %w", err)
	}

	resolver, err := geolib.NewResolver(geolib.ResolverOpts{
		Endpoint:          conf.GetEndpoint(),
		Parameters:        conf.GetParameters(),
		Transport:         transport,
		Logger:            logger,
		Timeout:           conf.GetTimeout(),
		CorrelatorWorkers: conf.GetCorrelatorWorkers(),
	})
	if err != nil {
		transport.Shutdown()

		return nil, fmt.Errorf("cannot create resolver: %w", err)
	}

	return resolver, nil
}

func makeHTTPHandler(conf *config, resolver *geolib.Resolver) (http.Handler, error) {
	metricsHandler, err := makeMetricsHandler(resolver)
	if err != nil {
		return nil, fmt.Errorf("cannot create metrics handler: %w", err)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /metrics", metricsHandler)
	mux.Handle("/", geolib.NewHTTPHandler(resolver))

	if !conf.HasBasicAuth() {
		return mux, nil
	}

	return newBasicAuthMiddleware(mux, conf.GetBasicAuthUser(), conf.GetBasicAuthPassword()), nil
}
