package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var pathsJSON bool

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show where the backend binary and config are expected",
	RunE:  runPaths,
}

func init() {
	pathsCmd.Flags().BoolVar(&pathsJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	resolved, err := app.Paths()
	if err != nil {
		reportError(err)
		return err
	}

	if pathsJSON {
		return uiInstance.JSON(resolved)
	}

	uiInstance.Header("Backend paths")
	uiInstance.KeyValue("Mode", resolved.Mode.String())
	uiInstance.KeyValue("Binary", resolved.BinaryPath)
	uiInstance.KeyValue("Config", resolved.ConfigPath)
	uiInstance.KeyValue("URL", app.BaseURL())

	if _, err := os.Stat(resolved.BinaryPath); err != nil {
		uiInstance.Warning("Backend binary not found, run will fail until it is installed")
	}
	if _, err := os.Stat(resolved.ConfigPath); err != nil {
		uiInstance.Warning("Backend config not found, the backend will use its defaults")
	}
	return nil
}
