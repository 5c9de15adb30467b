package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanhaei/nspr/internal/graph"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

// StatsResponse is the response for the stats command.
type StatsResponse struct {
	Entities int            `json:"entities"`
	Edges    int            `json:"edges"`
	ByType   map[string]int `json:"by_type"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge graph statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph()

	types := []graph.EntityType{
		graph.TypeSymptom, graph.TypeDisease, graph.TypeSpecialty,
		graph.TypeDoctor, graph.TypeLocation, graph.TypePrice,
		graph.TypeInsurance,
	}

	byType := make(map[string]int)
	for _, t := range types {
		if n := len(g.EntitiesOfType(t)); n > 0 {
			byType[string(t)] = n
		}
	}

	resp := StatsResponse{
		Entities: g.EntityCount(),
		Edges:    g.EdgeCount(),
		ByType:   byType,
	}

	if humanOutput {
		fmt.Printf("Entities: %d\nEdges: %d\n", resp.Entities, resp.Edges)
		for _, t := range types {
			if n, ok := byType[string(t)]; ok {
				fmt.Printf("  %s: %d\n", t, n)
			}
		}
		return nil
	}
	return outputJSON(resp)
}
