package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		flagBase, _ := cmd.Flags().GetString("base")
		base, err := resolveBase(flagBase, cfg.Rates.DefaultBase)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		watcher := a.newWatcher(base)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start rate watcher: %w", err)
		}
		defer watcher.Stop()

		router := handler.NewRouter(log,
			handler.NewRatesHandler(watcher, log),
			handler.NewConversionHandler(service.NewConversionService(watcher, log), log),
			handler.NewHistoryHandler(a.history, log),
			handler.NewPreferencesHandler(a.preferences, log),
		)

		server := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: router,
		}

		status := watcher.Current()
		color.New(color.FgCyan, color.Bold).Printf("fxconv %s listening on %s\n", version, cfg.Server.Addr)
		fmt.Printf("  base:   %s (%s)\n", status.Base, stateColor(status.State).Sprint(status.State))
		if !a.rateAPI.Configured() {
			color.Yellow("  no API access key set, serving fallback rates")
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info("Server listening", map[string]interface{}{
				"addr": cfg.Server.Addr,
				"base": base,
			})
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info("Shutting down server", nil)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("base", "", "base currency to watch (default: rates.default_base)")
}

// stateColor picks the terminal colour for a watcher state
func stateColor(state service.WatcherState) *color.Color {
	switch state {
	case service.StateReady:
		return color.New(color.FgGreen)
	case service.StateDegraded:
		return color.New(color.FgYellow)
	case service.StateStopped:
		return color.New(color.FgRed)
	default:
		return color.New(color.Faint)
	}
}
