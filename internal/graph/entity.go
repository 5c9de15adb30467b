// Package graph defines the typed medical knowledge graph: entities,
// relations, and the immutable adjacency-indexed snapshot built from them.
package graph

import "fmt"

// EntityType classifies a node in the knowledge graph.
type EntityType string

// Entity types.
const (
	TypeSymptom   EntityType = "Symptom"
	TypeDisease   EntityType = "Disease"
	TypeSpecialty EntityType = "Specialty"
	TypeDoctor    EntityType = "Doctor"
	TypeLocation  EntityType = "Location"
	TypePrice     EntityType = "Price"
	TypeInsurance EntityType = "Insurance"
)

// RelationType classifies a directed edge between two entities.
type RelationType string

// Relation types. Each constrains the (source, target) entity types;
// see relationSchema.
const (
	HasSymptom         RelationType = "has_symptom"         // Disease -> Symptom
	RequiresSpecialty  RelationType = "requires_specialty"  // Disease -> Specialty
	PracticesSpecialty RelationType = "practices_specialty" // Doctor -> Specialty
	TreatedBy          RelationType = "treated_by"          // Disease -> Doctor
	LocatedIn          RelationType = "located_in"          // Doctor -> Location
	ChargesFee         RelationType = "charges_fee"         // Doctor -> Price
	AcceptsInsurance   RelationType = "accepts_insurance"   // Doctor -> Insurance
)

// endpoints describes the entity types a relation may connect.
type endpoints struct {
	Source EntityType
	Target EntityType
}

var relationSchema = map[RelationType]endpoints{
	HasSymptom:         {TypeDisease, TypeSymptom},
	RequiresSpecialty:  {TypeDisease, TypeSpecialty},
	PracticesSpecialty: {TypeDoctor, TypeSpecialty},
	TreatedBy:          {TypeDisease, TypeDoctor},
	LocatedIn:          {TypeDoctor, TypeLocation},
	ChargesFee:         {TypeDoctor, TypePrice},
	AcceptsInsurance:   {TypeDoctor, TypeInsurance},
}

// RelationTypes returns all known relation types in a fixed order.
func RelationTypes() []RelationType {
	return []RelationType{
		HasSymptom,
		RequiresSpecialty,
		PracticesSpecialty,
		TreatedBy,
		LocatedIn,
		ChargesFee,
		AcceptsInsurance,
	}
}

// Entity represents a typed node in the knowledge graph.
// The type is fixed at creation; attributes are free-form name/value pairs
// (fee amounts, coordinates, display names).
type Entity struct {
	ID    string         `json:"id"`
	Type  EntityType     `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// FloatAttr returns a numeric attribute, converting from the types JSON
// decoding produces.
func (e Entity) FloatAttr(name string) (float64, bool) {
	v, ok := e.Attrs[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Edge represents a directed, typed relationship between two entities.
// Weighting is computed at query time, never stored.
type Edge struct {
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Relation RelationType `json:"relation"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.Source, e.Relation, e.Target)
}
