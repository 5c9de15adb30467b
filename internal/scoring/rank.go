package scoring

import (
	"math"
	"sort"
)

// ScoredDoctor is one ranked recommendation with its provenance: the
// relevance and satisfaction factors, the weighted paths that produced
// them, and a rendered explanation.
type ScoredDoctor struct {
	Doctor       string       `json:"doctor"`
	Relevance    float64      `json:"relevance"`
	Satisfaction Satisfaction `json:"satisfaction"`
	FinalScore   float64      `json:"final_score"`
	TopPaths     []ScoredPath `json:"top_paths"`
	PathCount    int          `json:"path_count"`
	Explanation  string       `json:"explanation"`
}

// FinalScore combines the semantic and symbolic factors. It is zero
// exactly when either factor is zero.
func FinalScore(relevance float64, s Satisfaction) float64 {
	return s.Total * relevance
}

// Rank orders doctors by descending final score with a deterministic
// total order: ties break by ascending fee, then ascending distance, then
// doctor ID. Zero-scored doctors sort last and are removed entirely when
// filterZero is set. A positive topK truncates the result.
func Rank(doctors []ScoredDoctor, filterZero bool, topK int) []ScoredDoctor {
	sort.Slice(doctors, func(i, j int) bool {
		a, b := doctors[i], doctors[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if fa, fb := tieFee(a), tieFee(b); fa != fb {
			return fa < fb
		}
		if da, db := tieDistance(a), tieDistance(b); da != db {
			return da < db
		}
		return a.Doctor < b.Doctor
	})

	if filterZero {
		kept := doctors[:0]
		for _, d := range doctors {
			if d.FinalScore > 0 {
				kept = append(kept, d)
			}
		}
		doctors = kept
	}

	if topK > 0 && len(doctors) > topK {
		doctors = doctors[:topK]
	}
	return doctors
}

// tieFee returns the fee for tie-breaking; doctors without a fee on
// record sort after those with one.
func tieFee(d ScoredDoctor) float64 {
	if !d.Satisfaction.HasFee {
		return math.Inf(1)
	}
	return d.Satisfaction.Fee
}

func tieDistance(d ScoredDoctor) float64 {
	if !d.Satisfaction.HasDistance {
		return math.Inf(1)
	}
	return d.Satisfaction.DistanceKm
}
