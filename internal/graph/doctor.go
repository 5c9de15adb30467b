package graph

// Attribute names used on Price and Location entities.
const (
	AttrAmount = "amount"
	AttrLat    = "lat"
	AttrLon    = "lon"
)

// DoctorFee returns the consultation fee of a doctor, following its
// charges_fee arc to the linked Price entity. The second return is false
// when the doctor has no fee on record.
func (g *Graph) DoctorFee(doctorID string) (float64, bool) {
	for _, arc := range g.Neighbors(doctorID) {
		if arc.Reverse || arc.Relation != ChargesFee {
			continue
		}
		price, ok := g.Entity(arc.Target)
		if !ok {
			continue
		}
		if amount, ok := price.FloatAttr(AttrAmount); ok {
			return amount, true
		}
	}
	return 0, false
}

// DoctorCoords returns the (lat, lon) of a doctor's practice location,
// following its located_in arc.
func (g *Graph) DoctorCoords(doctorID string) (lat, lon float64, ok bool) {
	for _, arc := range g.Neighbors(doctorID) {
		if arc.Reverse || arc.Relation != LocatedIn {
			continue
		}
		loc, found := g.Entity(arc.Target)
		if !found {
			continue
		}
		la, okLat := loc.FloatAttr(AttrLat)
		lo, okLon := loc.FloatAttr(AttrLon)
		if okLat && okLon {
			return la, lo, true
		}
	}
	return 0, 0, false
}

// DoctorInsurers returns the set of insurance plan IDs a doctor accepts.
func (g *Graph) DoctorInsurers(doctorID string) map[string]bool {
	plans := make(map[string]bool)
	for _, arc := range g.Neighbors(doctorID) {
		if !arc.Reverse && arc.Relation == AcceptsInsurance {
			plans[arc.Target] = true
		}
	}
	return plans
}

// DoctorSpecialty returns the ID of the specialty a doctor practices,
// or "" if none is recorded.
func (g *Graph) DoctorSpecialty(doctorID string) string {
	for _, arc := range g.Neighbors(doctorID) {
		if !arc.Reverse && arc.Relation == PracticesSpecialty {
			return arc.Target
		}
	}
	return ""
}
