package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/9seconds/peergeo/geolib"
	"github.com/alecthomas/kingpin/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var version = "dev"

var (
	app = kingpin.New(
		"peergeo",
		"Asynchronous IP geolocation resolver.")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("PEERGEO_DEBUG").
		Bool()

	serveCommand    = app.Command("serve", "Run HTTP API.")
	serveConfigPath = serveCommand.Arg("config-path", "Path to the config.").
			Required().
			ExistingFile()

	resolveCommand    = app.Command("resolve", "Resolve given keys and print results.")
	resolveConfigPath = resolveCommand.Arg("config-path", "Path to the config.").
				Required().
				ExistingFile()
	resolveKeys = resolveCommand.Arg("keys", "IP addresses or hostnames to resolve.").
			Required().
			Strings()
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	ctx, cancel := makeRootContext()

	defer cancel()

	var err error

	switch command {
	case serveCommand.FullCommand():
		err = runServe(ctx, *serveConfigPath)
	case resolveCommand.FullCommand():
		err = runResolve(ctx, os.Stdout, *resolveConfigPath, *resolveKeys)
	}

	if err != nil {
		app.Fatalf("%v", err)
	}
}

func runServe(ctx context.Context, configPath string) error {
	conf, err := parseConfig(configPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	resolver, err := makeResolver(conf, newLogger(os.Stderr, *debug))
	if err != nil {
		return err
	}

	defer resolver.Shutdown()

	handler, err := makeHTTPHandler(conf, resolver)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", conf.GetListen())
	if err != nil {
		return fmt.Errorf("cannot start listener: %w", err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: conf.GetHTTPTimeout(),
	}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server has failed: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func runResolve(ctx context.Context, w io.Writer, configPath string, keys []string) error {
	conf, err := parseConfig(configPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	resolver, err := makeResolver(conf, newLogger(os.Stderr, *debug))
	if err != nil {
		return err
	}

	defer resolver.Shutdown()

	results, err := resolver.LookupAll(ctx, keys)
	if err != nil {
		return fmt.Errorf("cannot resolve: %w", err)
	}

	return printResults(w, results)
}

func printResults(w io.Writer, results []geolib.Information) error {
	for _, info := range results {
		data, ok := info.Data()
		if !ok {
			message, _ := info.Message()

			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", info.Query(), info.Status(), message); err != nil {
				return err
			}

			continue
		}

		encoded, err := geolib.EncodeSuccessData(info.Query(), data)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", info.Query(), info.Status(), encoded); err != nil {
			return err
		}
	}

	return nil
}
