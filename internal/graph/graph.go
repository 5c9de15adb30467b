package graph

import "fmt"

// StructuralError reports malformed graph input: a dangling edge reference,
// a relation whose endpoints violate its type schema, or a duplicate entity
// ID. Construction fails fast; the caller must fix the input before retrying.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Msg
}

func structuralf(format string, args ...any) *StructuralError {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// Arc is one traversable edge as seen from one of its endpoints. Every
// stored edge yields two arcs: a forward arc at its source and a reverse
// arc at its target. Reverse arcs let traversal walk an edge against its
// schema direction (a symptom has no outgoing edges of its own, but its
// diseases are still one hop away). Source and Target are in traversal
// order; for a reverse arc the underlying edge runs Target -> Source.
type Arc struct {
	Relation RelationType
	Source   string
	Target   string
	Reverse  bool
}

// Graph is an immutable typed multigraph over medical and socio-economic
// entities. It is built once per snapshot and exposes read-only accessors;
// concurrent readers need no synchronization.
type Graph struct {
	entities []Entity
	index    map[string]int
	adj      [][]Arc
	byType   map[EntityType][]string
}

// Build constructs a graph snapshot from entity and edge records.
// Entity IDs must be unique across the snapshot. Every edge must reference
// known entities and respect its relation's (source, target) type schema.
func Build(entities []Entity, edges []Edge) (*Graph, error) {
	g := &Graph{
		entities: make([]Entity, 0, len(entities)),
		index:    make(map[string]int, len(entities)),
		adj:      make([][]Arc, len(entities)),
		byType:   make(map[EntityType][]string),
	}

	for _, ent := range entities {
		if ent.ID == "" {
			return nil, structuralf("entity with empty ID")
		}
		if _, ok := relationSchemaType(ent.Type); !ok {
			return nil, structuralf("entity %q has unknown type %q", ent.ID, ent.Type)
		}
		if prev, ok := g.index[ent.ID]; ok {
			return nil, structuralf("duplicate entity ID %q (types %s and %s)",
				ent.ID, g.entities[prev].Type, ent.Type)
		}
		g.index[ent.ID] = len(g.entities)
		g.entities = append(g.entities, ent)
		g.byType[ent.Type] = append(g.byType[ent.Type], ent.ID)
	}

	for _, e := range edges {
		schema, ok := relationSchema[e.Relation]
		if !ok {
			return nil, structuralf("edge %s: unknown relation type", e)
		}
		src, ok := g.index[e.Source]
		if !ok {
			return nil, structuralf("edge %s: unknown source entity", e)
		}
		dst, ok := g.index[e.Target]
		if !ok {
			return nil, structuralf("edge %s: unknown target entity", e)
		}
		if g.entities[src].Type != schema.Source || g.entities[dst].Type != schema.Target {
			return nil, structuralf("edge %s: relation %s requires %s->%s, got %s->%s",
				e, e.Relation, schema.Source, schema.Target,
				g.entities[src].Type, g.entities[dst].Type)
		}
		g.adj[src] = append(g.adj[src], Arc{Relation: e.Relation, Source: e.Source, Target: e.Target})
		g.adj[dst] = append(g.adj[dst], Arc{Relation: e.Relation, Source: e.Target, Target: e.Source, Reverse: true})
	}

	return g, nil
}

// relationSchemaType reports whether t is a known entity type.
func relationSchemaType(t EntityType) (EntityType, bool) {
	switch t {
	case TypeSymptom, TypeDisease, TypeSpecialty, TypeDoctor,
		TypeLocation, TypePrice, TypeInsurance:
		return t, true
	}
	return t, false
}

// Entity returns the entity with the given ID.
func (g *Graph) Entity(id string) (Entity, bool) {
	i, ok := g.index[id]
	if !ok {
		return Entity{}, false
	}
	return g.entities[i], true
}

// Contains reports whether an entity with the given ID exists.
func (g *Graph) Contains(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Neighbors returns the traversable arcs of an entity in insertion order,
// forward and reverse. The returned slice is shared with the graph and
// must not be modified.
func (g *Graph) Neighbors(id string) []Arc {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.adj[i]
}

// EntitiesOfType returns the IDs of all entities of the given type,
// in insertion order. The returned slice must not be modified.
func (g *Graph) EntitiesOfType(t EntityType) []string {
	return g.byType[t]
}

// EntityCount returns the number of entities in the snapshot.
func (g *Graph) EntityCount() int {
	return len(g.entities)
}

// EdgeCount returns the number of stored edges in the snapshot. Reverse
// arcs are a traversal view, not extra edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, arcs := range g.adj {
		for _, a := range arcs {
			if !a.Reverse {
				n++
			}
		}
	}
	return n
}
