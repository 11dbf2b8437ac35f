package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidhub/internal/bridge"
	"vidhub/internal/config"
	"vidhub/internal/log"
	"vidhub/internal/metrics"
	"vidhub/internal/worker"

	"github.com/spf13/cobra"
)

// workerQueueSize bounds events waiting to be written to the gallery
const workerQueueSize = 1024

func newWorkerCmd(cfg func() *config.Config) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run the import worker on stdin/stdout",
		Long:   `Run the import worker. The gallery starts it and talks to it over stdin and stdout.`,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			// stdout carries the protocol
			configureLogging(c, "always")
			if metricsAddr == "" {
				metricsAddr = c.Metrics.Addr
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWorker(ctx, c, metricsAddr, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")
	return cmd
}

func runWorker(ctx context.Context, cfg *config.Config, metricsAddr string, in io.Reader, out io.Writer) error {
	logger := log.For("worker")

	w, err := worker.New(worker.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		metrics.Initialize()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Warn("Metrics server stopped")
			}
		}()
		defer srv.Close()
		logger.With(log.F("addr", metricsAddr)).Info("Serving metrics")
	}

	conn := bridge.NewWorkerConn(in, out, bridge.WithQueueSize(workerQueueSize))
	defer conn.Close()

	err = bridge.Serve(ctx, conn, w)
	w.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
