package scoring

import (
	"math"
	"testing"

	"github.com/tanhaei/nspr/internal/graph"
)

// constraintGraph builds one doctor with fee 100, a location, and the
// Basic insurance plan.
func constraintGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(
		[]graph.Entity{
			{ID: "DocA", Type: graph.TypeDoctor},
			{ID: "fee:DocA", Type: graph.TypePrice, Attrs: map[string]any{graph.AttrAmount: 100.0}},
			{ID: "loc:DocA", Type: graph.TypeLocation, Attrs: map[string]any{graph.AttrLat: 35.0, graph.AttrLon: 51.0}},
			{ID: "Basic", Type: graph.TypeInsurance},
		},
		[]graph.Edge{
			{Source: "DocA", Target: "fee:DocA", Relation: graph.ChargesFee},
			{Source: "DocA", Target: "loc:DocA", Relation: graph.LocatedIn},
			{Source: "DocA", Target: "Basic", Relation: graph.AcceptsInsurance},
		},
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func f(v float64) *float64 { return &v }

func TestEvaluate_Cost(t *testing.T) {
	g := constraintGraph(t)

	tests := []struct {
		name   string
		budget *float64
		want   float64
	}{
		{"no budget constraint", nil, 1},
		{"fee within budget", f(150), 1},
		{"fee at budget", f(100), 1},
		{"soft decay", f(80), 0.75}, // 1 - (100-80)/80
		{"decay floored at zero", f(50), 0},
		{"far over budget", f(10), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Evaluate(g, "DocA", Constraints{MaxBudget: tt.budget}, CombineProduct, DefaultWeights())
			if math.Abs(s.Cost-tt.want) > tolerance {
				t.Errorf("Cost = %v, want %v", s.Cost, tt.want)
			}
			if s.Total != s.Cost {
				t.Errorf("Total = %v, want %v (other dimensions unconstrained)", s.Total, s.Cost)
			}
		})
	}
}

func TestEvaluate_Geo(t *testing.T) {
	g := constraintGraph(t)
	doctorLoc := &Coordinates{Lat: 35.0, Lon: 51.0}

	t.Run("at the doctor's door", func(t *testing.T) {
		s := Evaluate(g, "DocA", Constraints{Location: doctorLoc, MaxDistanceKm: f(10)}, CombineProduct, DefaultWeights())
		if math.Abs(s.Geo-1) > tolerance {
			t.Errorf("Geo = %v, want 1", s.Geo)
		}
	})

	t.Run("linear decay with distance", func(t *testing.T) {
		// One degree of latitude is ~111 km.
		far := &Coordinates{Lat: 36.0, Lon: 51.0}
		s := Evaluate(g, "DocA", Constraints{Location: far, MaxDistanceKm: f(222)}, CombineProduct, DefaultWeights())
		if !s.HasDistance {
			t.Fatal("expected a computed distance")
		}
		want := 1 - s.DistanceKm/222
		if math.Abs(s.Geo-want) > tolerance {
			t.Errorf("Geo = %v, want %v", s.Geo, want)
		}
		if s.Geo < 0.4 || s.Geo > 0.6 {
			t.Errorf("Geo = %v, expected roughly 0.5 at half the limit", s.Geo)
		}
	})

	t.Run("beyond the limit floors at zero", func(t *testing.T) {
		far := &Coordinates{Lat: 40.0, Lon: 51.0}
		s := Evaluate(g, "DocA", Constraints{Location: far, MaxDistanceKm: f(100)}, CombineProduct, DefaultWeights())
		if s.Geo != 0 {
			t.Errorf("Geo = %v, want 0", s.Geo)
		}
	})

	t.Run("location without max distance is unconstrained", func(t *testing.T) {
		s := Evaluate(g, "DocA", Constraints{Location: doctorLoc}, CombineProduct, DefaultWeights())
		if s.Geo != 1 {
			t.Errorf("Geo = %v, want 1", s.Geo)
		}
		if !s.HasDistance {
			t.Error("distance should still be reported for the explanation")
		}
	})
}

func TestEvaluate_Insurance(t *testing.T) {
	g := constraintGraph(t)

	t.Run("accepted plan", func(t *testing.T) {
		s := Evaluate(g, "DocA", Constraints{RequiredInsurance: "Basic"}, CombineProduct, DefaultWeights())
		if s.Insurance != 1 || s.Total != 1 {
			t.Errorf("Insurance/Total = %v/%v, want 1/1", s.Insurance, s.Total)
		}
	})

	t.Run("mismatch is a hard zero", func(t *testing.T) {
		s := Evaluate(g, "DocA", Constraints{
			RequiredInsurance: "Premium",
			MaxBudget:         f(500), // satisfied, must not rescue the total
		}, CombineProduct, DefaultWeights())
		if s.Insurance != 0 {
			t.Errorf("Insurance = %v, want 0", s.Insurance)
		}
		if s.Total != 0 {
			t.Errorf("Total = %v, want 0 (insurance veto)", s.Total)
		}
	})

	t.Run("veto survives weighted-sum mode", func(t *testing.T) {
		s := Evaluate(g, "DocA", Constraints{
			RequiredInsurance: "Premium",
			MaxBudget:         f(500),
		}, CombineWeightedSum, DefaultWeights())
		if s.Total != 0 {
			t.Errorf("Total = %v, want 0", s.Total)
		}
	})
}

func TestEvaluate_WeightedSum(t *testing.T) {
	g := constraintGraph(t)

	// Cost 0.75, geo 1, insurance 1 with equal weights.
	s := Evaluate(g, "DocA", Constraints{MaxBudget: f(80)}, CombineWeightedSum, DefaultWeights())
	want := (0.75 + 1 + 1) / 3
	if math.Abs(s.Total-want) > tolerance {
		t.Errorf("Total = %v, want %v", s.Total, want)
	}

	// Doubling the cost weight pulls the total toward the cost score.
	s = Evaluate(g, "DocA", Constraints{MaxBudget: f(80)}, CombineWeightedSum, Weights{Cost: 2, Geo: 1, Insurance: 1})
	want = (2*0.75 + 1 + 1) / 4
	if math.Abs(s.Total-want) > tolerance {
		t.Errorf("Total = %v, want %v", s.Total, want)
	}
}

func TestEvaluate_AlwaysInUnitInterval(t *testing.T) {
	g := constraintGraph(t)

	cases := []Constraints{
		{},
		{MaxBudget: f(1)},
		{MaxBudget: f(0)},
		{Location: &Coordinates{Lat: -80, Lon: 170}, MaxDistanceKm: f(1)},
		{RequiredInsurance: "Nope"},
		{MaxBudget: f(1), Location: &Coordinates{Lat: 0, Lon: 0}, MaxDistanceKm: f(1), RequiredInsurance: "Nope"},
	}

	for _, mode := range []CombineMode{CombineProduct, CombineWeightedSum} {
		for _, c := range cases {
			s := Evaluate(g, "DocA", c, mode, DefaultWeights())
			for name, v := range map[string]float64{
				"cost": s.Cost, "geo": s.Geo, "insurance": s.Insurance, "total": s.Total,
			} {
				if v < 0 || v > 1 {
					t.Errorf("mode %s constraints %+v: %s = %v out of [0,1]", mode, c, name, v)
				}
			}
		}
	}
}

func TestEvaluate_MissingAttributes(t *testing.T) {
	// A doctor with no fee, location, or insurance on record.
	g, err := graph.Build(
		[]graph.Entity{{ID: "DocBare", Type: graph.TypeDoctor}},
		nil,
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s := Evaluate(g, "DocBare", Constraints{
		MaxBudget:     f(50),
		Location:      &Coordinates{Lat: 0, Lon: 0},
		MaxDistanceKm: f(10),
	}, CombineProduct, DefaultWeights())

	// Missing records leave the soft dimensions unconstrained; the
	// explanation reports the gap instead.
	if s.Cost != 1 || s.Geo != 1 {
		t.Errorf("Cost/Geo = %v/%v, want 1/1", s.Cost, s.Geo)
	}
	if s.HasFee || s.HasDistance {
		t.Error("HasFee/HasDistance should be false without records")
	}

	// A required plan is still a hard constraint.
	s = Evaluate(g, "DocBare", Constraints{RequiredInsurance: "Basic"}, CombineProduct, DefaultWeights())
	if s.Total != 0 {
		t.Errorf("Total = %v, want 0", s.Total)
	}
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		within                 float64
	}{
		{"same point", 35.7, 51.4, 35.7, 51.4, 0, 1e-9},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.5},
		{"tehran to isfahan", 35.6892, 51.3890, 32.6546, 51.6680, 338, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.within {
				t.Errorf("Haversine = %v, want %v (within %v)", got, tt.wantKm, tt.within)
			}
		})
	}
}
