// Package cmd provides the CLI commands for hypershell
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyperion/hypershell/pkg/config"
	"github.com/hyperion/hypershell/pkg/metrics"
	"github.com/hyperion/hypershell/pkg/shell"
	"github.com/hyperion/hypershell/pkg/shellerr"
	"github.com/hyperion/hypershell/pkg/ui"
)

var (
	cfgFile    string
	v          *viper.Viper
	cfg        *config.Config
	logger     *slog.Logger
	uiInstance *ui.UI
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hypershell",
	Short: "Supervise the hyper backend and forward commands to it",
	Long: `hypershell is a headless host for the hyper backend server.

It locates and launches the backend binary, waits for it to report healthy,
forwards coordinator commands to its HTTP tool endpoint, and stops the
backend when the host exits.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		uiInstance = ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr())

		var err error
		cfg, err = config.LoadViper(v, cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = "0.1.0"

	v = config.NewViper()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.hypershell/config.yaml)")
	rootCmd.PersistentFlags().String("mode", "", "Run mode: development or packaged")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	_ = v.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// newApp builds the host application, exposing /metrics when metrics.listen is set
func newApp(ctx context.Context, opts ...shell.Option) (*shell.App, error) {
	if cfg.Metrics.Listen != "" {
		collector := metrics.NewPrometheusCollector("hypershell")
		startMetricsServer(ctx, cfg.Metrics.Listen, collector)
		opts = append(opts, shell.WithMetrics(collector))
	}

	opts = append([]shell.Option{shell.WithLogger(logger)}, opts...)
	return shell.New(cfg, opts...)
}

// startMetricsServer serves the collector's registry until ctx is done
func startMetricsServer(ctx context.Context, addr string, collector *metrics.PrometheusCollector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

// reportError prints err with its code
func reportError(err error) {
	uiInstance.Error(err.Error())
	if code := shellerr.CodeOf(err); code != "" {
		uiInstance.Subtle(fmt.Sprintf("code: %s", code))
	}
}
