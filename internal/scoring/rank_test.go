package scoring

import (
	"strings"
	"testing"
)

func doc(id string, score float64) ScoredDoctor {
	return ScoredDoctor{Doctor: id, FinalScore: score}
}

func ids(doctors []ScoredDoctor) []string {
	out := make([]string, len(doctors))
	for i, d := range doctors {
		out[i] = d.Doctor
	}
	return out
}

func TestRank_Order(t *testing.T) {
	ranked := Rank([]ScoredDoctor{
		doc("DocC", 0.2),
		doc("DocA", 0.9),
		doc("DocB", 0.5),
	}, false, 0)

	want := []string{"DocA", "DocB", "DocC"}
	if got := ids(ranked); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRank_TieBreaks(t *testing.T) {
	t.Run("fee breaks a score tie", func(t *testing.T) {
		cheap := doc("DocZ", 0.5)
		cheap.Satisfaction.HasFee = true
		cheap.Satisfaction.Fee = 80
		costly := doc("DocA", 0.5)
		costly.Satisfaction.HasFee = true
		costly.Satisfaction.Fee = 120

		ranked := Rank([]ScoredDoctor{costly, cheap}, false, 0)
		if ranked[0].Doctor != "DocZ" {
			t.Errorf("first = %s, want DocZ (lower fee)", ranked[0].Doctor)
		}
	})

	t.Run("missing fee sorts after a known fee", func(t *testing.T) {
		known := doc("DocZ", 0.5)
		known.Satisfaction.HasFee = true
		known.Satisfaction.Fee = 500
		unknown := doc("DocA", 0.5)

		ranked := Rank([]ScoredDoctor{unknown, known}, false, 0)
		if ranked[0].Doctor != "DocZ" {
			t.Errorf("first = %s, want DocZ", ranked[0].Doctor)
		}
	})

	t.Run("distance breaks a fee tie", func(t *testing.T) {
		near := doc("DocZ", 0.5)
		near.Satisfaction.HasDistance = true
		near.Satisfaction.DistanceKm = 2
		far := doc("DocA", 0.5)
		far.Satisfaction.HasDistance = true
		far.Satisfaction.DistanceKm = 9

		ranked := Rank([]ScoredDoctor{far, near}, false, 0)
		if ranked[0].Doctor != "DocZ" {
			t.Errorf("first = %s, want DocZ (closer)", ranked[0].Doctor)
		}
	})

	t.Run("doctor ID is the final tie-break", func(t *testing.T) {
		ranked := Rank([]ScoredDoctor{doc("DocB", 0.5), doc("DocA", 0.5)}, false, 0)
		if ranked[0].Doctor != "DocA" {
			t.Errorf("first = %s, want DocA", ranked[0].Doctor)
		}
	})
}

func TestRank_FilterZero(t *testing.T) {
	doctors := []ScoredDoctor{doc("DocA", 0.3), doc("DocB", 0)}

	kept := Rank(append([]ScoredDoctor(nil), doctors...), false, 0)
	if len(kept) != 2 || kept[1].Doctor != "DocB" {
		t.Errorf("without filtering got %v, want zero-scored last", ids(kept))
	}

	filtered := Rank(append([]ScoredDoctor(nil), doctors...), true, 0)
	if len(filtered) != 1 || filtered[0].Doctor != "DocA" {
		t.Errorf("with filtering got %v, want [DocA]", ids(filtered))
	}
}

func TestRank_TopK(t *testing.T) {
	doctors := []ScoredDoctor{doc("DocA", 0.9), doc("DocB", 0.5), doc("DocC", 0.2)}

	ranked := Rank(append([]ScoredDoctor(nil), doctors...), false, 2)
	if len(ranked) != 2 || ranked[1].Doctor != "DocB" {
		t.Errorf("topK=2 got %v, want [DocA DocB]", ids(ranked))
	}

	ranked = Rank(append([]ScoredDoctor(nil), doctors...), false, 10)
	if len(ranked) != 3 {
		t.Errorf("topK beyond len truncated to %d", len(ranked))
	}
}

func TestFinalScore(t *testing.T) {
	if got := FinalScore(0.8, Satisfaction{Total: 0.5}); got != 0.4 {
		t.Errorf("FinalScore = %v, want 0.4", got)
	}
	if got := FinalScore(0.8, Satisfaction{Total: 0}); got != 0 {
		t.Errorf("FinalScore with zero satisfaction = %v, want 0", got)
	}
	if got := FinalScore(0, Satisfaction{Total: 1}); got != 0 {
		t.Errorf("FinalScore with zero relevance = %v, want 0", got)
	}
}
