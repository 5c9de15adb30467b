package scoring

import (
	"fmt"
	"strings"
)

// Explain renders a deterministic justification for a scored doctor: the
// best path's entity chain, its relevance weight, and the numeric margin
// of every constrained dimension.
func Explain(d ScoredDoctor, c Constraints) string {
	var b strings.Builder

	if len(d.TopPaths) > 0 {
		best := d.TopPaths[0]
		fmt.Fprintf(&b, "Reached via %s (path weight %.3f, %d path(s) total).",
			best.Path, best.Weight, d.PathCount)
	} else {
		fmt.Fprintf(&b, "No scorable path reached %s.", d.Doctor)
	}

	if c.MaxBudget != nil {
		if d.Satisfaction.HasFee {
			if d.Satisfaction.Fee <= *c.MaxBudget {
				fmt.Fprintf(&b, " Fee %.0f is within the %.0f budget.",
					d.Satisfaction.Fee, *c.MaxBudget)
			} else {
				fmt.Fprintf(&b, " Fee %.0f exceeds the %.0f budget by %.0f.",
					d.Satisfaction.Fee, *c.MaxBudget, d.Satisfaction.Fee-*c.MaxBudget)
			}
		} else {
			b.WriteString(" No fee on record to check against the budget.")
		}
	}

	if c.Location != nil && c.MaxDistanceKm != nil {
		if d.Satisfaction.HasDistance {
			if d.Satisfaction.DistanceKm <= *c.MaxDistanceKm {
				fmt.Fprintf(&b, " Located %.1f km away, within the %.0f km limit.",
					d.Satisfaction.DistanceKm, *c.MaxDistanceKm)
			} else {
				fmt.Fprintf(&b, " Located %.1f km away, beyond the %.0f km limit.",
					d.Satisfaction.DistanceKm, *c.MaxDistanceKm)
			}
		} else {
			b.WriteString(" No practice location on record to check the distance limit.")
		}
	}

	if c.RequiredInsurance != "" {
		if d.Satisfaction.Insurance > 0 {
			fmt.Fprintf(&b, " Accepts the %s plan.", c.RequiredInsurance)
		} else {
			fmt.Fprintf(&b, " Does not accept the %s plan.", c.RequiredInsurance)
		}
	}

	return b.String()
}

// NoMatchExplanation describes an empty result set. Reaching no doctor
// within the hop limit is a valid outcome, not a pipeline failure.
func NoMatchExplanation(symptoms []string, maxHops int) string {
	return fmt.Sprintf("No doctor is reachable within %d hops of the reported symptom(s) %s.",
		maxHops, strings.Join(symptoms, ", "))
}
