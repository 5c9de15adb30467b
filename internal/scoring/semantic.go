// Package scoring turns enumerated paths into a ranked, explainable
// recommendation: translational embedding energy and softmax relevance on
// the semantic side, constraint satisfaction on the symbolic side, and a
// deterministic aggregation of the two.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tanhaei/nspr/internal/embedding"
	"github.com/tanhaei/nspr/internal/pathfind"
)

// MissingPolicy decides what happens when a path references an entity or
// relation with no embedding vector.
type MissingPolicy string

const (
	// SkipPath drops the offending path and scores the rest. Partial
	// results are preferred over total failure.
	SkipPath MissingPolicy = "skip"

	// FailQuery aborts the whole query on the first missing vector.
	FailQuery MissingPolicy = "fail"
)

// ErrAllPathsSkipped reports that every path of a doctor failed scoring.
var ErrAllPathsSkipped = errors.New("all paths skipped for missing embeddings")

// ScoredPath is a path with its raw semantic energy and its softmax weight
// among the paths reaching the same doctor.
type ScoredPath struct {
	Path   pathfind.Path `json:"path"`
	Energy float64       `json:"energy"`
	Weight float64       `json:"weight"`
}

// PathEnergy computes the translational embedding energy of a path.
// Each edge contributes the residual h + r - t in its schema direction;
// a step traversed against the edge contributes the negated residual.
// Residuals compose additively along the chain and the energy is the
// negative L2 norm of the accumulated residual. A path consistent with
// the embedding model has a small residual and therefore a higher (less
// negative) energy.
func PathEnergy(table *embedding.Table, p pathfind.Path) (float64, error) {
	residual := make([]float64, table.Dimensions())
	for _, step := range p.Steps {
		head, tail := step.From, step.To
		if step.Reverse {
			head, tail = step.To, step.From
		}
		h, err := table.EntityVector(head)
		if err != nil {
			return 0, err
		}
		r, err := table.RelationVector(step.Relation)
		if err != nil {
			return 0, err
		}
		t, err := table.EntityVector(tail)
		if err != nil {
			return 0, err
		}
		sign := 1.0
		if step.Reverse {
			sign = -1
		}
		for i := range residual {
			residual[i] += sign * (float64(h[i]) + float64(r[i]) - float64(t[i]))
		}
	}

	var norm float64
	for _, v := range residual {
		norm += v * v
	}
	return -math.Sqrt(norm), nil
}

// ScorePaths computes energies and softmax weights for one doctor's paths.
// Paths with missing embeddings are dropped under SkipPath (the skipped
// count is returned) or abort the call under FailQuery. If every path is
// dropped the doctor has no semantic signal and ErrAllPathsSkipped is
// returned so the caller can exclude it from the candidate set.
func ScorePaths(table *embedding.Table, paths []pathfind.Path, temperature float64, policy MissingPolicy) ([]ScoredPath, int, error) {
	scored := make([]ScoredPath, 0, len(paths))
	skipped := 0

	for _, p := range paths {
		energy, err := PathEnergy(table, p)
		if err != nil {
			if policy == FailQuery {
				return nil, skipped, fmt.Errorf("scoring path %s: %w", p, err)
			}
			skipped++
			continue
		}
		scored = append(scored, ScoredPath{Path: p, Energy: energy})
	}

	if len(scored) == 0 {
		if len(paths) == 0 {
			return nil, 0, nil
		}
		return nil, skipped, ErrAllPathsSkipped
	}

	applySoftmax(scored, temperature)

	// Order by weight, best first. Ties fall back to the path text so the
	// ordering is total.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Weight != scored[j].Weight {
			return scored[i].Weight > scored[j].Weight
		}
		return scored[i].Path.String() < scored[j].Path.String()
	})

	return scored, skipped, nil
}

// applySoftmax converts raw energies to weights summing to 1, subtracting
// the maximum energy before exponentiating so large magnitudes never
// overflow. A single path gets weight 1 by definition.
func applySoftmax(paths []ScoredPath, temperature float64) {
	if len(paths) == 1 {
		paths[0].Weight = 1
		return
	}
	if temperature <= 0 {
		temperature = 1
	}

	maxEnergy := paths[0].Energy
	for _, p := range paths[1:] {
		if p.Energy > maxEnergy {
			maxEnergy = p.Energy
		}
	}

	var sum float64
	for i := range paths {
		paths[i].Weight = math.Exp((paths[i].Energy - maxEnergy) / temperature)
		sum += paths[i].Weight
	}
	for i := range paths {
		paths[i].Weight /= sum
	}
}

// Relevance reduces a doctor's scored paths to the bounded scalar carried
// into ranking: the top path's weight times the sigmoid of its raw energy.
// A doctor with one short, embedding-consistent path beats a doctor with
// many weak ones.
func Relevance(paths []ScoredPath) float64 {
	if len(paths) == 0 {
		return 0
	}
	best := paths[0]
	for _, p := range paths[1:] {
		if p.Weight > best.Weight || (p.Weight == best.Weight && p.Energy > best.Energy) {
			best = p
		}
	}
	return best.Weight * sigmoid(best.Energy)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
