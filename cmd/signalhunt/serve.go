package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/go-signalhunt/infrastructure/httpapi"
	"github.com/ahrav/go-signalhunt/infrastructure/middleware"
	"github.com/ahrav/go-signalhunt/internal/scoring"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 15 * time.Second

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	listen := fs.String("listen", "", "Listen address, overriding server.listen from the config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := common.logger(stderr)
	if err != nil {
		return err
	}
	event, err := common.event(ctx)
	if err != nil {
		return err
	}

	metrics := middleware.NewPrometheusMetrics()
	scorer, err := scoring.NewScorer(event.Rules,
		scoring.WithLogger(logger),
		scoring.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	serverCfg := event.Config.Server
	if *listen != "" {
		serverCfg.Listen = *listen
	}
	srv := httpapi.NewServer(httpapi.Config{
		Scorer:   scorer,
		Server:   serverCfg,
		Gatherer: prometheus.DefaultGatherer,
		Metrics:  metrics,
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "event", event.Config.Metadata.Name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
