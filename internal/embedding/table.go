// Package embedding provides the fixed-dimension vector tables consumed by
// the path reasoning engine, providers that generate them, and an on-disk
// index format.
package embedding

import (
	"errors"
	"fmt"

	"github.com/tanhaei/nspr/internal/graph"
)

// Errors returned by table lookups and mutations.
var (
	ErrMissingEmbedding  = errors.New("missing embedding vector")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Table is a read-only lookup of embedding vectors keyed by entity ID and
// by relation type. Vectors are supplied externally; the engine never
// trains or mutates them. A missing vector is an error, never a default.
type Table struct {
	dims      int
	entities  map[string][]float32
	relations map[graph.RelationType][]float32
}

// NewTable creates an empty table expecting vectors of the given dimension.
func NewTable(dims int) *Table {
	return &Table{
		dims:      dims,
		entities:  make(map[string][]float32),
		relations: make(map[graph.RelationType][]float32),
	}
}

// Dimensions returns the vector dimension of the table.
func (t *Table) Dimensions() int {
	return t.dims
}

// SetEntity stores the vector for an entity ID.
func (t *Table) SetEntity(id string, vec []float32) error {
	if len(vec) != t.dims {
		return fmt.Errorf("%w: entity %q has %d, want %d", ErrDimensionMismatch, id, len(vec), t.dims)
	}
	t.entities[id] = vec
	return nil
}

// SetRelation stores the vector for a relation type.
func (t *Table) SetRelation(rel graph.RelationType, vec []float32) error {
	if len(vec) != t.dims {
		return fmt.Errorf("%w: relation %q has %d, want %d", ErrDimensionMismatch, rel, len(vec), t.dims)
	}
	t.relations[rel] = vec
	return nil
}

// EntityVector returns the vector for an entity ID.
func (t *Table) EntityVector(id string) ([]float32, error) {
	vec, ok := t.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: entity %q", ErrMissingEmbedding, id)
	}
	return vec, nil
}

// RelationVector returns the vector for a relation type.
func (t *Table) RelationVector(rel graph.RelationType) ([]float32, error) {
	vec, ok := t.relations[rel]
	if !ok {
		return nil, fmt.Errorf("%w: relation %q", ErrMissingEmbedding, rel)
	}
	return vec, nil
}

// EntityCount returns the number of entity vectors in the table.
func (t *Table) EntityCount() int {
	return len(t.entities)
}
