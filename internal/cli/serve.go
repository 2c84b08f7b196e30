package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	clienthttp "github.com/hakichain/haki-analytics/internal/http"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var host, port, address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API on the loopback interface",
		Long: `Start the dashboard API. The registry is fetched once at startup; both asset
collections load whenever the wallet session becomes non-empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if host == "" {
				host = a.cfg.Server.Host
			}
			if port == "" {
				port = a.cfg.Server.Port
			}

			rt, err := newRuntime(ctx, a.cfg, address)
			if err != nil {
				return err
			}
			defer rt.Close()

			var cases clienthttp.CaseService
			if rt.cases != nil {
				cases = rt.cases
			}
			handler, err := clienthttp.NewServer(rt.dash, cases, clienthttp.Options{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Metrics:        rt.metrics,
				Version:        a.info.Version,
			})
			if err != nil {
				return err
			}

			rt.dash.Start(ctx)

			return serve(ctx, net.JoinHostPort(host, port), handler)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from config)")
	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from config)")
	cmd.Flags().StringVar(&address, "address", "", "Watch this wallet address instead of the configured wallet endpoint")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("dashboard API listening", "addr", addr)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error", "error", err)
		}
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	log.Info("HTTP server gracefully stopped")
	return nil
}
