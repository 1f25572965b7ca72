package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperion/hypershell/pkg/health"
)

var healthWait time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	Long: `Check the health of the backend server with a single GET /health.

With --wait the check is repeated with backoff until the backend is healthy
or the wait duration elapses.`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().DurationVar(&healthWait, "wait", 0, "Poll until healthy for up to this long")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	if healthWait > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), healthWait)
		defer cancel()

		opts := health.DefaultWaitOptions()
		opts.Logger = logger
		if err := health.WaitReady(ctx, app.Probe(), opts); err != nil {
			reportError(err)
			return err
		}
		uiInstance.Success("Backend is healthy")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	status, err := app.Probe().Check(ctx)
	if err != nil {
		reportError(err)
		return err
	}

	uiInstance.Success("Backend is " + status)
	uiInstance.KeyValue("URL", app.Probe().URL())
	return nil
}
