package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the backend and keep it running until interrupted",
	Long: `Run acts as the application host.

In packaged mode the backend binary is resolved next to the host, launched
with --mode=http and polled until /health answers. In development mode the
backend is expected to be running already. On SIGINT or SIGTERM the backend
is terminated before hypershell exits.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}

	// Exit must run on every path once Setup has been attempted
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Supervisor.GracePeriod+5*time.Second)
		defer cancel()
		if err := app.Exit(shutdownCtx); err != nil {
			reportError(err)
		}
	}()

	if err := app.Setup(ctx); err != nil {
		reportError(err)
		return err
	}

	uiInstance.Success("Backend ready")
	uiInstance.KeyValue("Mode", app.Mode().String())
	uiInstance.KeyValue("UI", app.Client().ServerURL())
	if pid, ok := app.Supervisor().PID(); ok {
		uiInstance.KeyValue("PID", strconv.Itoa(pid))
	}
	uiInstance.Subtle("Press Ctrl+C to stop")

	<-ctx.Done()
	uiInstance.Info("Shutting down backend")
	return nil
}
