package scoring

import (
	"github.com/tanhaei/nspr/internal/graph"
)

// Coordinates is a (lat, lon) pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Constraints are the optional socio-economic requirements of a query.
// A nil/empty field leaves that dimension unconstrained.
type Constraints struct {
	MaxBudget         *float64     `json:"max_budget,omitempty"`
	Location          *Coordinates `json:"location,omitempty"`
	MaxDistanceKm     *float64     `json:"max_distance_km,omitempty"`
	RequiredInsurance string       `json:"required_insurance,omitempty"`
}

// CombineMode selects how the per-dimension scores fold into Psi.
type CombineMode string

const (
	// CombineProduct multiplies the dimensions, so any zeroed dimension
	// vetoes the doctor.
	CombineProduct CombineMode = "product"

	// CombineWeightedSum averages the soft dimensions by weight. The
	// insurance dimension stays a hard veto in this mode too.
	CombineWeightedSum CombineMode = "weighted-sum"
)

// Weights are the per-dimension weights for CombineWeightedSum. They are
// normalized before use, so only their ratios matter.
type Weights struct {
	Cost      float64 `yaml:"cost" json:"cost"`
	Geo       float64 `yaml:"geo" json:"geo"`
	Insurance float64 `yaml:"insurance" json:"insurance"`
}

// DefaultWeights gives every dimension equal say.
func DefaultWeights() Weights {
	return Weights{Cost: 1, Geo: 1, Insurance: 1}
}

// Satisfaction is the per-dimension and combined constraint score of one
// doctor, with the raw values the explanation needs.
type Satisfaction struct {
	Cost      float64 `json:"cost"`
	Geo       float64 `json:"geo"`
	Insurance float64 `json:"insurance"`
	Total     float64 `json:"total"`

	Fee         float64 `json:"fee,omitempty"`
	HasFee      bool    `json:"-"`
	DistanceKm  float64 `json:"distance_km,omitempty"`
	HasDistance bool    `json:"-"`
}

// Evaluate computes the joint constraint satisfaction of a doctor.
// Every dimension lands in [0,1]:
//
//   - cost: 1 within budget, then a linear decay of slope 1/budget,
//     floored at 0.
//   - geo: linear decay of distance over the allowed maximum, floored at 0.
//   - insurance: 1 on a plan match, otherwise a hard 0.
//
// Unconstrained dimensions score 1.
func Evaluate(g *graph.Graph, doctorID string, c Constraints, mode CombineMode, w Weights) Satisfaction {
	s := Satisfaction{Cost: 1, Geo: 1, Insurance: 1}

	if fee, ok := g.DoctorFee(doctorID); ok {
		s.Fee = fee
		s.HasFee = true
		if c.MaxBudget != nil {
			budget := *c.MaxBudget
			switch {
			case budget <= 0:
				s.Cost = 0
			case fee <= budget:
				s.Cost = 1
			default:
				s.Cost = max(0, 1-(fee-budget)/budget)
			}
		}
	}

	if lat, lon, ok := g.DoctorCoords(doctorID); ok {
		if c.Location != nil {
			s.DistanceKm = Haversine(c.Location.Lat, c.Location.Lon, lat, lon)
			s.HasDistance = true
			if c.MaxDistanceKm != nil {
				if *c.MaxDistanceKm <= 0 {
					s.Geo = 0
				} else {
					s.Geo = max(0, 1-s.DistanceKm / *c.MaxDistanceKm)
				}
			}
		}
	}

	if c.RequiredInsurance != "" {
		if !g.DoctorInsurers(doctorID)[c.RequiredInsurance] {
			s.Insurance = 0
		}
	}

	s.Total = combine(s, mode, w)
	return s
}

func combine(s Satisfaction, mode CombineMode, w Weights) float64 {
	if mode == CombineWeightedSum {
		// Insurance vetoes regardless of mode.
		if s.Insurance == 0 {
			return 0
		}
		total := w.Cost + w.Geo + w.Insurance
		if total <= 0 {
			w = DefaultWeights()
			total = 3
		}
		return (w.Cost*s.Cost + w.Geo*s.Geo + w.Insurance*s.Insurance) / total
	}
	return s.Cost * s.Geo * s.Insurance
}
