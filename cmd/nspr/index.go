package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tanhaei/nspr/internal/embedding"
)

var (
	indexProvider string
	indexSeed     int64
	indexDims     int
	indexURL      string
	indexModel    string
)

func init() {
	indexBuildCmd.Flags().StringVar(&indexProvider, "provider", "seeded", "Embedding provider: seeded or service")
	indexBuildCmd.Flags().Int64Var(&indexSeed, "seed", embedding.DefaultSeed, "Seed for the seeded provider")
	indexBuildCmd.Flags().IntVar(&indexDims, "dims", 0, "Vector dimensions (0 = provider default)")
	indexBuildCmd.Flags().StringVar(&indexURL, "url", "", "Embedding service URL (service provider)")
	indexBuildCmd.Flags().StringVar(&indexModel, "model", "", "Embedding model (service provider)")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the embedding index",
}

// IndexBuildResponse is the response for index build.
type IndexBuildResponse struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Entities   int    `json:"entities"`
	Relations  int    `json:"relations"`
	DurationMs int64  `json:"duration_ms"`
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the embedding index for the current dataset",
	Long: `Build the embedding index covering every entity and relation type of
the knowledge graph.

The seeded provider (default) derives deterministic vectors from a fixed
seed and needs no external service. The service provider calls an
Ollama-compatible embeddings API; set NSPR_EMBED_URL and NSPR_EMBED_KEY
in the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	g := mustLoadGraph()

	provider, err := buildProvider(ctx)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	builder := embedding.NewBuilder(provider)
	if humanOutput {
		builder.SetProgressReporter(embedding.ProgressFunc(func(current, total int) {
			fmt.Fprintf(os.Stderr, "\rEmbedding %d/%d", current, total)
			if current == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	idx, stats, err := builder.Build(ctx, g)
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}

	if err := idx.Save(dataDir); err != nil {
		exitWithError(ExitError, "saving index: %v", err)
	}

	resp := IndexBuildResponse{
		Model:      idx.ModelName,
		Dimensions: idx.Dimensions,
		Entities:   stats.EntitiesEmbedded,
		Relations:  stats.RelationsEmbedded,
		DurationMs: stats.Duration.Milliseconds(),
	}
	if humanOutput {
		fmt.Printf("Indexed %d entities and %d relations (%s, %d dims)\n",
			resp.Entities, resp.Relations, resp.Model, resp.Dimensions)
		return nil
	}
	return outputJSON(resp)
}

// buildProvider constructs the embedding provider selected by flags.
func buildProvider(ctx context.Context) (embedding.Provider, error) {
	switch indexProvider {
	case "seeded":
		return embedding.NewSeededProvider(indexSeed, indexDims), nil

	case "service":
		_ = godotenv.Load()

		var opts []embedding.ServiceOption
		url := indexURL
		if url == "" {
			url = os.Getenv("NSPR_EMBED_URL")
		}
		if url != "" {
			opts = append(opts, embedding.WithBaseURL(url))
		}
		if indexModel != "" {
			opts = append(opts, embedding.WithModel(indexModel))
		}
		if indexDims > 0 {
			opts = append(opts, embedding.WithDimensions(indexDims))
		}
		if key := os.Getenv("NSPR_EMBED_KEY"); key != "" {
			opts = append(opts, embedding.WithAPIKey(key))
		}

		provider := embedding.NewServiceProvider(opts...)
		if err := provider.IsAvailable(ctx); err != nil {
			return nil, fmt.Errorf("embedding service not available: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown provider %q (want seeded or service)", indexProvider)
	}
}

// IndexInfoResponse is the response for index info.
type IndexInfoResponse struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Entities   int    `json:"entities"`
	Relations  int    `json:"relations"`
	CreatedAt  string `json:"created_at"`
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show embedding index metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := embedding.LoadIndex(dataDir)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		resp := IndexInfoResponse{
			Model:      idx.ModelName,
			Dimensions: idx.Dimensions,
			Entities:   idx.EntityCount,
			Relations:  idx.RelationCount,
			CreatedAt:  idx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if humanOutput {
			fmt.Printf("Model: %s\nDimensions: %d\nEntities: %d\nRelations: %d\nCreated: %s\n",
				resp.Model, resp.Dimensions, resp.Entities, resp.Relations, resp.CreatedAt)
			return nil
		}
		return outputJSON(resp)
	},
}
