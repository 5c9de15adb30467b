package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanhaei/nspr/internal/recommend"
	"github.com/tanhaei/nspr/internal/scoring"
)

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

// scenario is one canned demo query.
type scenario struct {
	Name        string              `json:"name"`
	Symptoms    []string            `json:"symptoms"`
	Constraints scoring.Constraints `json:"constraints"`
}

// demoScenarios exercise the three classic cases: a tight budget, a
// premium insurance plan, and a location-bound search.
var demoScenarios = []scenario{
	{
		Name:     "Worker with back pain, low budget",
		Symptoms: []string{"Severe Back Pain"},
		Constraints: scoring.Constraints{
			MaxBudget:         floatPtr(60),
			Location:          &scoring.Coordinates{Lat: 12, Lon: 12},
			MaxDistanceKm:     floatPtr(50),
			RequiredInsurance: "Basic",
		},
	},
	{
		Name:     "Child with high fever, premium insurance",
		Symptoms: []string{"High Fever (Child)"},
		Constraints: scoring.Constraints{
			MaxBudget:         floatPtr(200),
			Location:          &scoring.Coordinates{Lat: 10, Lon: 20},
			MaxDistanceKm:     floatPtr(50),
			RequiredInsurance: "Premium",
		},
	},
	{
		Name:     "Elderly patient with chest pain",
		Symptoms: []string{"Chest Pain"},
		Constraints: scoring.Constraints{
			MaxBudget:         floatPtr(150),
			Location:          &scoring.Coordinates{Lat: 15, Lon: 15},
			MaxDistanceKm:     floatPtr(50),
			RequiredInsurance: "Gold",
		},
	},
}

// ScenarioResult pairs a scenario with its recommendation outcome.
type ScenarioResult struct {
	Scenario scenario          `json:"scenario"`
	Result   *recommend.Result `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Run the canned demo scenarios",
	Args:  cobra.NoArgs,
	RunE:  runScenarios,
}

func runScenarios(cmd *cobra.Command, args []string) error {
	engine, _, _ := mustLoadEngine()
	ctx := context.Background()

	results := make([]ScenarioResult, 0, len(demoScenarios))
	for _, sc := range demoScenarios {
		sr := ScenarioResult{Scenario: sc}
		result, err := engine.Recommend(ctx, recommend.Query{
			Symptoms:    sc.Symptoms,
			Constraints: sc.Constraints,
		})
		if err != nil {
			sr.Error = err.Error()
		} else {
			sr.Result = result
		}
		results = append(results, sr)
	}

	if humanOutput {
		for _, sr := range results {
			fmt.Printf("SCENARIO: %s\n", sr.Scenario.Name)
			if sr.Error != "" {
				fmt.Printf("  error: %s\n\n", sr.Error)
				continue
			}
			printResultHuman(sr.Result)
			fmt.Println("------------------------------------------------------------")
		}
		return nil
	}
	return outputJSON(results)
}

func floatPtr(v float64) *float64 {
	return &v
}
