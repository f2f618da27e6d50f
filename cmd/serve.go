package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/spectra/internal/api"
)

// serveCmd is the cobra command that starts the spectra API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the spectra api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve initializes dependencies and starts the spectra API server
func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := setupServices(ctx, cfg)
	if err != nil {
		return err
	}

	defer svc.close()

	if cfg.Intel.AutoHydrate {
		hydrateInBackground(ctx, svc.intel)
	}

	routerCfg := api.RouterConfig{
		Scanner:     svc.scanner,
		URLAnalyzer: svc.engine,
		Analyzer:    svc.analyzer,
		Intel:       svc.intel,
		History:     svc.history,
		MaxBodySize: cfg.Server.MaxBodySize,
		// the scan deadline answers first; the router bound only catches stuck handlers
		RequestTimeout: cfg.Scanner.ScanTimeout + cfg.Server.ShutdownGracePeriod,
	}

	if svc.slack != nil {
		routerCfg.Notifier = svc.slack
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Msg("starting spectra service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
