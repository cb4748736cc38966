package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scriber/internal/daemon"
	"scriber/internal/jobs"
	"scriber/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription web server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.NewFromConfig(logging.LoggerConfig{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				LogDir: cfg.Paths.LogDir,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}

			d, err := daemon.New(cfg, store, logger)
			if err != nil {
				_ = store.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (press Ctrl+C to stop)\n", d.Addr())

			<-signalCtx.Done()
			logger.Info("scriber serve shutting down")
			return nil
		},
	}
}
