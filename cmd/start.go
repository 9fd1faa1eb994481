package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/webhookx-io/hookdash/app"
)

func newStartCmd() *cobra.Command {
	start := &cobra.Command{
		Use:   "start",
		Short: "Start server",
		Long:  `Start the admin API and the webhook counter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}

			app, err := app.New(cfg)
			if err != nil {
				return err
			}

			if err := app.Start(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				if err := app.Stop(); err != nil {
					os.Exit(1)
				}
			}()

			app.Wait()

			return nil
		},
	}

	return start
}
