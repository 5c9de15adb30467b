package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
)

const (
	// DefaultSeed is the default seed for the offline provider.
	DefaultSeed = 42

	// DefaultSeededDimensions is the default vector dimension for the
	// offline provider, matching the trained model this engine consumes.
	DefaultSeededDimensions = 128
)

// SeededProvider generates deterministic pseudo-random unit vectors from a
// fixed seed and the input text. It stands in for a trained embedding model
// when no service is available: the same seed and text always produce the
// same vector, so queries stay reproducible.
type SeededProvider struct {
	seed       int64
	dimensions int
}

// NewSeededProvider creates a deterministic offline provider.
func NewSeededProvider(seed int64, dims int) *SeededProvider {
	if dims <= 0 {
		dims = DefaultSeededDimensions
	}
	return &SeededProvider{seed: seed, dimensions: dims}
}

// Embed generates a unit vector derived from the seed and text.
func (p *SeededProvider) Embed(_ context.Context, text string) ([]float32, error) {
	h := sha256.Sum256([]byte(text))
	derived := p.seed ^ int64(binary.BigEndian.Uint64(h[:8]))
	rng := rand.New(rand.NewSource(derived))

	vec := make([]float32, p.dimensions)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("degenerate zero vector for %q", text)
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// ModelName returns the name of the embedding model.
func (p *SeededProvider) ModelName() string {
	return fmt.Sprintf("seeded-rng-%d", p.seed)
}

// Dimensions returns the vector dimensions.
func (p *SeededProvider) Dimensions() int {
	return p.dimensions
}
