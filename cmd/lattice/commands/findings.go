package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archtrace/lattice/internal/store"
)

var findingsJSON bool

var findingsCmd = &cobra.Command{
	Use:   "findings <run-id>",
	Short: "List the findings of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		findings, err := st.FindingsByRun(ctx, args[0])
		if err != nil {
			return err
		}

		if findingsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(findings)
		}

		for _, f := range findings {
			fmt.Printf("[%s] %s %s\n", f.Severity, f.Type, f.Description)
		}
		return nil
	},
}

func init() {
	findingsCmd.Flags().BoolVar(&findingsJSON, "json", false, "print findings as JSON")
	rootCmd.AddCommand(findingsCmd)
}
