package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/propconsole/internal/config"
	"github.com/iliyamo/propconsole/internal/queue"
)

func consumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append lease.created events to the lease log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadQueueConfig()
			if dir, _ := cmd.Flags().GetString("log-dir"); dir != "" {
				cfg.LogDir = dir
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err := queue.StartLeaseConsumer(ctx, cfg)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().String("log-dir", "", "directory for lease.log (defaults to QUEUE_LOG_DIR)")
	return cmd
}
