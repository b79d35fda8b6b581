// Package commands implements the lattice CLI: running matching over a
// snapshot file and inspecting the findings of a stored run.
package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/archtrace/lattice/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Requirement-to-design matching over extracted project graphs",
	Long: `lattice links engineering requirements to extracted project entities
(components, constraints, evidence) and records every linkage with its
justification in a provenance-tracked knowledge graph.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.toml")
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		cfg := config.Default()
		cfg.ApplyEnv()
		return cfg, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}
