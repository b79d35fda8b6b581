package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/archtrace/lattice/internal/embed"
	"github.com/archtrace/lattice/internal/engine"
	"github.com/archtrace/lattice/internal/engine/strategy"
	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
	"github.com/archtrace/lattice/internal/store"
)

var (
	dryRun     bool
	jsonOutput bool
)

var runCmd = &cobra.Command{
	Use:   "run <snapshot.json>",
	Short: "Execute one matching run over a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		var snap model.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("parsing snapshot: %w", err)
		}

		ctx := cmd.Context()

		var st store.Store
		if !dryRun {
			st, err = store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close(ctx)
		}

		var embedder embed.Client
		if cfg.Embedding.APIKey != "" || cfg.Embedding.Provider == "ollama" {
			embedder, err = embed.NewClient(ctx, cfg.Embedding)
			if err != nil {
				return err
			}
		} else {
			log.Println("No embedding credentials configured, semantic matching disabled")
		}

		eng := engine.New(cfg, st, &strategy.Resources{
			Aliases:  lexicon.NewAliasTable(cfg.Matching.Aliases),
			Embedder: embedder,
			Matching: cfg.Matching,
		})

		result, err := eng.Run(ctx, &snap)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("run %s: %d matches, %d edges, %d findings, %d warnings\n",
			result.RunID, len(result.Matches), len(result.Edges),
			len(result.Findings), len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		for _, f := range result.Findings {
			fmt.Printf("  [%s] %s %s\n", f.Severity, f.Type, f.Description)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate without committing to the store")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full run result as JSON")
	rootCmd.AddCommand(runCmd)
}
