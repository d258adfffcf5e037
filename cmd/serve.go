package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
	"github.com/lehigh-university-libraries/libbycheck/internal/handlers"
	"github.com/lehigh-university-libraries/libbycheck/internal/reconcile"
	"github.com/lehigh-university-libraries/libbycheck/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string
	var cacheTTL time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an HTTP endpoint for availability lookups",
		Long: `Starts a small HTTP server answering availability lookups against the
configured library. Catalog queries are paced exactly as in a batch run,
across all requests.

  GET  /api/check?title=...&author=...
  POST /api/check   with a JSON array of {"Title": ..., "Author": ...}`,
		Example: `  # Start server on default port 8888
  libbycheck serve

  # Start server on custom port for another library
  libbycheck serve --port 3000 --library nypl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			cache := storage.New(cacheTTL)
			driver := reconcile.NewDriver(catalog.NewClient(cfg.Catalog()), reconcile.Options{
				Delay: cfg.Delay,
				Cache: cache,
			})
			handler := handlers.New(driver)

			mux := http.NewServeMux()
			mux.HandleFunc("/api/check", handler.HandleCheck)
			mux.HandleFunc("/healthcheck", handler.HandleHealthcheck)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Lookup endpoint available", "addr", addr, "library", cfg.LibraryID, "url", "http://localhost"+addr+"/api/check")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped", "cached_searches", cache.Len())
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().Duration("delay", time.Second, "Pause between catalog queries")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 10*time.Minute, "How long search results are reused (0 keeps them until restart)")

	return cmd
}
