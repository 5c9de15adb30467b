package embedding

import "context"

// Provider generates embedding vectors from text.
type Provider interface {
	// Embed generates a vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
