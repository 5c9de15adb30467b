// Package main provides the nspr CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// dataDir is the dataset directory holding the source JSON files, the
// snapshot cache, and the embedding index.
var dataDir string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nspr",
	Short: "Neuro-symbolic doctor recommendation over a medical knowledge graph",
	Long: `nspr matches reported symptoms to a ranked list of doctors by reasoning
over a typed knowledge graph linking symptoms, diseases, specialties, and
provider attributes (fee, location, insurance).

Paths from symptoms to doctors are scored with translational embeddings;
budget, distance, and insurance constraints are scored symbolically; the
two combine into one auditable score per doctor. All commands output JSON
by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "data", "Dataset directory")
	rootCmd.Version = Version
}
