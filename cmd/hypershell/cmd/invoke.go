package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var invokeList bool

var invokeCmd = &cobra.Command{
	Use:   "invoke <command> [json-args]",
	Short: "Invoke a host command against the backend",
	Long: `Invoke dispatches a named command exactly as the UI would, with
camelCase JSON arguments, and prints the backend's JSON result.

Example:
  hypershell invoke create_human_task '{"prompt":"Write release notes"}'
  hypershell invoke list_agent_tasks '{"humanTaskId":"t1"}'`,
	Args: func(cmd *cobra.Command, args []string) error {
		if invokeList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().BoolVar(&invokeList, "list", false, "List available commands")
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	if invokeList {
		table := uiInstance.NewTable("Command")
		for _, name := range app.Registry().Names() {
			table.AddRow(name)
		}
		table.Render()
		return nil
	}

	var raw json.RawMessage
	if len(args) == 2 {
		raw = json.RawMessage(args[1])
	}

	result, err := app.Invoke(cmd.Context(), args[0], raw)
	if err != nil {
		reportError(err)
		return err
	}

	if err := uiInstance.JSON(result); err != nil {
		return fmt.Errorf("print result: %w", err)
	}
	return nil
}
