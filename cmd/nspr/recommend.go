package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanhaei/nspr/internal/recommend"
	"github.com/tanhaei/nspr/internal/scoring"
)

var (
	recommendBudget      float64
	recommendLat         float64
	recommendLon         float64
	recommendMaxDistance float64
	recommendInsurance   string
)

func init() {
	recommendCmd.Flags().Float64Var(&recommendBudget, "budget", 0, "Maximum consultation fee (0 = unconstrained)")
	recommendCmd.Flags().Float64Var(&recommendLat, "lat", 0, "User latitude")
	recommendCmd.Flags().Float64Var(&recommendLon, "lon", 0, "User longitude")
	recommendCmd.Flags().Float64Var(&recommendMaxDistance, "max-distance", 0, "Maximum distance in km (0 = unconstrained)")
	recommendCmd.Flags().StringVar(&recommendInsurance, "insurance", "", "Required insurance plan")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <symptom>...",
	Short: "Rank doctors for the given symptoms",
	Long: `Rank doctors for the given symptom IDs under optional budget, distance,
and insurance constraints.

Examples:
  nspr recommend "Chest Pain" --budget 150 --insurance Gold
  nspr recommend "Severe Back Pain" --lat 35.7 --lon 51.4 --max-distance 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	engine, _, _ := mustLoadEngine()

	query := recommend.Query{
		Symptoms:    args,
		Constraints: buildConstraints(cmd),
	}

	result, err := engine.Recommend(context.Background(), query)
	if err != nil {
		exitWithError(ExitError, "recommending: %v", err)
	}

	if humanOutput {
		printResultHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// buildConstraints converts set flags to query constraints; unset flags
// leave their dimension unconstrained.
func buildConstraints(cmd *cobra.Command) scoring.Constraints {
	var c scoring.Constraints
	if cmd.Flags().Changed("budget") {
		budget := recommendBudget
		c.MaxBudget = &budget
	}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		c.Location = &scoring.Coordinates{Lat: recommendLat, Lon: recommendLon}
	}
	if cmd.Flags().Changed("max-distance") {
		dist := recommendMaxDistance
		c.MaxDistanceKm = &dist
	}
	c.RequiredInsurance = recommendInsurance
	return c
}

func printResultHuman(result *recommend.Result) {
	if len(result.Doctors) == 0 {
		fmt.Println(result.Explanation)
		return
	}

	fmt.Printf("Found %d candidate(s):\n\n", len(result.Doctors))
	for i, d := range result.Doctors {
		fmt.Printf("%d. %s (score %.4f, relevance %.4f, satisfaction %.4f)\n",
			i+1, d.Doctor, d.FinalScore, d.Relevance, d.Satisfaction.Total)
		fmt.Printf("   %s\n\n", d.Explanation)
	}
	if result.PathsSkipped > 0 {
		fmt.Printf("(%d path(s) skipped for missing embeddings)\n", result.PathsSkipped)
	}
}
