package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// ─── Data Commands ──────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)

	exportCmd.Flags().StringP("output", "o", "", "Write the export to a file instead of stdout")
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all simulator data as JSON",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	var bundle json.RawMessage
	if err := callDaemon(http.MethodGet, "/api/export", nil, &bundle); err != nil {
		return err
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(bundle, &pretty); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Fprintln(os.Stdout, string(raw))
		return nil
	}
	if err := os.WriteFile(output, raw, 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Exported to %s\n", output)
	return nil
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all simulator data",
	Long: `Delete every persisted record — balance, history, fun-zone state,
settings, and profile. This cannot be undone.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Fprint(os.Stdout, "This deletes ALL simulator data. Type 'yes' to continue: ")
		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		if answer != "yes" {
			fmt.Fprintln(os.Stdout, "Aborted.")
			return nil
		}
	}

	if err := callDaemon(http.MethodDelete, "/api/data", nil, nil); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "All simulator data cleared.")
	return nil
}
