package main

import (
	"errors"

	"github.com/tanhaei/nspr/internal/config"
	"github.com/tanhaei/nspr/internal/dataset"
	"github.com/tanhaei/nspr/internal/embedding"
	"github.com/tanhaei/nspr/internal/graph"
	"github.com/tanhaei/nspr/internal/recommend"
)

// mustLoadGraph builds the graph snapshot from the dataset directory.
func mustLoadGraph() *graph.Graph {
	g, err := dataset.BuildGraph(dataDir)
	if err != nil {
		var structural *graph.StructuralError
		if errors.As(err, &structural) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "building graph: %v", err)
	}
	return g
}

// mustLoadConfig loads engine configuration with defaults.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(dataDir)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadTable loads the embedding table from the on-disk index.
func mustLoadTable() *embedding.Table {
	idx, err := embedding.LoadIndex(dataDir)
	if err != nil {
		if errors.Is(err, embedding.ErrIndexNotFound) {
			exitWithError(ExitConfigError, "embedding index not found\n\nRun 'nspr index build' to create it.")
		}
		exitWithError(ExitError, "loading embedding index: %v", err)
	}
	table, err := idx.Table()
	if err != nil {
		exitWithError(ExitError, "loading embedding index: %v", err)
	}
	return table
}

// mustLoadEngine assembles a query engine from the dataset directory.
func mustLoadEngine() (*recommend.Engine, *config.Config, *graph.Graph) {
	cfg := mustLoadConfig()
	g := mustLoadGraph()
	table := mustLoadTable()
	return recommend.New(g, table, cfg), cfg, g
}
