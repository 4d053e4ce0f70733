// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/reelscope/internal/config"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/mockapi"
)

func runMockServer(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	fs := flag.NewFlagSet("reelscope mock-server", flag.ContinueOnError)
	fs.SetOutput(std.err)
	listen := fs.String("listen", cfg.Mock.Listen, "listen address")
	latency := fs.Duration("latency", cfg.Mock.Latency, "artificial latency per request")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(std.err, "Error: unexpected argument %q\n", fs.Arg(0))
		return 2
	}

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 1
	}

	srv := mockapi.New(mockapi.Options{
		Secret:    []byte(cfg.Mock.Secret),
		TokenTTL:  cfg.Mock.TokenTTL,
		Latency:   *latency,
		RateLimit: cfg.Mock.RateLimit,
		Version:   cfg.Version,
	})
	fmt.Fprintf(std.out, "Mock catalog API listening on http://%s/api\n", ln.Addr())

	if err := serveMock(ctx, ln, srv.Handler()); err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 1
	}
	return 0
}

// serveMock serves h on ln until ctx ends, then shuts down gracefully.
func serveMock(ctx context.Context, ln net.Listener, h http.Handler) error {
	logger := xglog.WithComponent("mock-server")
	httpSrv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str(xglog.FieldEvent, "mock.started").
			Str(xglog.FieldAddress, ln.Addr().String()).
			Msg("mock backend listening")
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info().Str(xglog.FieldEvent, "mock.stopped").Msg("mock backend stopped")
		return nil
	})
	return g.Wait()
}
