package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tanhaei/nspr/internal/pathfind"
)

var pathsMaxHops int

func init() {
	pathsCmd.Flags().IntVar(&pathsMaxHops, "max-hops", 0, "Maximum path length in edges (0 = config value)")
	rootCmd.AddCommand(pathsCmd)
}

// PathsResponse is the response for the paths command.
type PathsResponse struct {
	Symptoms []string                   `json:"symptoms"`
	MaxHops  int                        `json:"max_hops"`
	Doctors  map[string][]pathfind.Path `json:"doctors"`
	Total    int                        `json:"total_paths"`
}

var pathsCmd = &cobra.Command{
	Use:   "paths <symptom>...",
	Short: "Enumerate symptom-to-doctor paths",
	Long: `Enumerate the bounded-depth simple paths from the given symptoms to
every reachable doctor, without scoring them. Useful for auditing what the
recommender can see.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPaths,
}

func runPaths(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	g := mustLoadGraph()

	maxHops := cfg.MaxHops
	if pathsMaxHops > 0 {
		maxHops = pathsMaxHops
	}

	byDoctor, err := pathfind.FindPaths(g, args, pathfind.Options{
		MaxHops:    maxHops,
		MaxPaths:   cfg.MaxPaths,
		MaxDoctors: cfg.MaxDoctors,
	})
	if err != nil {
		exitWithError(ExitError, "enumerating paths: %v", err)
	}

	total := 0
	for _, paths := range byDoctor {
		total += len(paths)
	}

	if humanOutput {
		printPathsHuman(byDoctor, total)
	} else {
		outputJSON(PathsResponse{
			Symptoms: args,
			MaxHops:  maxHops,
			Doctors:  byDoctor,
			Total:    total,
		})
	}
	return nil
}

func printPathsHuman(byDoctor map[string][]pathfind.Path, total int) {
	if total == 0 {
		fmt.Println("No doctor reachable")
		return
	}

	ids := make([]string, 0, len(byDoctor))
	for id := range byDoctor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("%d path(s) to %d doctor(s):\n\n", total, len(ids))
	for _, id := range ids {
		fmt.Printf("%s:\n", id)
		for _, p := range byDoctor[id] {
			fmt.Printf("  %s\n", p)
		}
		fmt.Println()
	}
}
