package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/striemhq/striem/pkg/config"
	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/healthz"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the StrIEM daemon",
	Long: `run starts the ingest server, detection worker, storage backend, and
forwarder configured in the config file, and blocks until signaled to
stop.`,
	RunE: runStriem,
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "Path to striem.yaml config file")
	runCmd.Flags().String("healthz-addr", "127.0.0.1:7172", "Address for /healthz, /readyz, and /metrics")
}

func runStriem(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	healthzAddr, _ := cmd.Flags().GetString("healthz-addr")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sup, err := supervisor.New(cfgPath, cfg)
	if err != nil {
		// ErrFatalInit means startup itself is unrecoverable (bad detection
		// rules, a schema directory that won't load) — exit immediately
		// rather than returning to cobra's generic error path, since there
		// is nothing left running to shut down cleanly.
		if errors.Is(err, errs.ErrFatalInit) {
			log.Logger.Fatal().Err(err).Msg("fatal initialization error")
		}
		return fmt.Errorf("initializing supervisor: %w", err)
	}

	hz := healthz.NewServer(sup, cfg.FQDN)
	go func() {
		log.Logger.Info().Str("addr", healthzAddr).Msg("starting healthz server")
		if err := hz.ListenAndServe(healthzAddr); err != nil {
			log.Logger.Error().Err(err).Msg("healthz server exited")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	runErr := make(chan error, 1)
	go func() { runErr <- sup.Run(ctx) }()

	select {
	case sig := <-sigCh:
		log.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
		sup.Shutdown()
		cancel()
	case err := <-runErr:
		if err != nil {
			if errors.Is(err, errs.ErrFatalInit) {
				log.Logger.Fatal().Err(err).Msg("fatal initialization error")
			}
			return fmt.Errorf("supervisor exited: %w", err)
		}
		return nil
	}

	if err := <-runErr; err != nil {
		if errors.Is(err, errs.ErrFatalInit) {
			log.Logger.Fatal().Err(err).Msg("fatal initialization error")
		}
		return fmt.Errorf("supervisor exited: %w", err)
	}
	log.Logger.Info().Msg("shutdown complete")
	return nil
}
