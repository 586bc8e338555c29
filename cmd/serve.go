package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"kubel/internal/api"
	"kubel/pkg/logging"
)

var serveMetricsAddr string

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve a kubel session to an editor over MCP stdio",
		Long: `Serves the session's tools (proxy_start, poller_start, poller_output, ...)
over the Model Context Protocol on stdin/stdout. Logs are sent to the client
as MCP logging notifications so stdout stays reserved for the protocol. Every child process is killed when the
client disconnects.

With --metrics-addr, Prometheus metrics are served on that address.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	c.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	return c
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := newApplication(true)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Shutdown()

	if serveMetricsAddr != "" {
		srv := &http.Server{
			Addr:              serveMetricsAddr,
			Handler:           application.Metrics().Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("CLI", err, "Metrics server on %s stopped", serveMetricsAddr)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logging.Info("CLI", "Serving metrics on http://%s/metrics", serveMetricsAddr)
	}

	server, err := api.NewServer(application, rootCmd.Version)
	if err != nil {
		return err
	}
	go server.ForwardLogs(application.LogEntries())
	return server.ServeStdio()
}
