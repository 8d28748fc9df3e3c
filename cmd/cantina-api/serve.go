package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/cantina-api/internal/config"
	"github.com/aanand-mishra/cantina-api/internal/http/router"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(*configPath)
		},
	}
}

// serve runs the server until SIGINT or SIGTERM, then shuts it down
// gracefully: in-flight requests get five seconds to finish.
func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting cantina-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(store, log, router.Options{}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ErrServerClosed is the normal result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-done:
	}

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}
