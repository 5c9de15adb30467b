// Package pathfind enumerates bounded-depth simple paths from symptom
// entities to doctor entities in a knowledge graph snapshot.
package pathfind

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tanhaei/nspr/internal/graph"
)

// Errors returned by path enumeration.
var (
	ErrUnknownStart    = errors.New("start entity not in graph")
	ErrStartNotSymptom = errors.New("start entity is not a symptom")
	ErrBadMaxHops      = errors.New("max hops must be positive")
)

// Step is one traversed edge of a path. From and To are in traversal
// order; Reverse marks that the underlying edge runs To -> From.
type Step struct {
	Relation graph.RelationType `json:"relation"`
	From     string             `json:"from"`
	To       string             `json:"to"`
	Reverse  bool               `json:"reverse,omitempty"`
}

// Path is an ordered, node-simple sequence of steps from a symptom
// entity to a doctor entity.
type Path struct {
	Steps []Step `json:"steps"`
}

// Len returns the path length in edges.
func (p Path) Len() int {
	return len(p.Steps)
}

// Start returns the first entity of the path.
func (p Path) Start() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[0].From
}

// End returns the last entity of the path.
func (p Path) End() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[len(p.Steps)-1].To
}

// Nodes returns the entity chain of the path, start first.
func (p Path) Nodes() []string {
	if len(p.Steps) == 0 {
		return nil
	}
	nodes := make([]string, 0, len(p.Steps)+1)
	nodes = append(nodes, p.Steps[0].From)
	for _, s := range p.Steps {
		nodes = append(nodes, s.To)
	}
	return nodes
}

func (p Path) String() string {
	return strings.Join(p.Nodes(), " -> ")
}

// Options bounds the traversal. MaxHops is the maximum path length in
// edges. MaxPaths caps the total number of accepted paths and MaxDoctors
// caps the number of candidate doctors; zero means unlimited. The caps
// guard against pathological branching, they are not ranking knobs.
type Options struct {
	MaxHops    int
	MaxPaths   int
	MaxDoctors int
}

// FindPaths enumerates all simple paths of length 1..MaxHops from the
// given symptom entities to doctor entities. Doctors with no accepted
// path are absent from the result. The set of paths returned for a fixed
// graph and start set is deterministic.
func FindPaths(g *graph.Graph, startIDs []string, opts Options) (map[string][]Path, error) {
	if opts.MaxHops < 1 {
		return nil, ErrBadMaxHops
	}

	// Sorted copy so traversal order never depends on caller order.
	starts := make([]string, 0, len(startIDs))
	seen := make(map[string]bool, len(startIDs))
	for _, id := range startIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ent, ok := g.Entity(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStart, id)
		}
		if ent.Type != graph.TypeSymptom {
			return nil, fmt.Errorf("%w: %q is a %s", ErrStartNotSymptom, id, ent.Type)
		}
		starts = append(starts, id)
	}
	sort.Strings(starts)

	byDoctor := make(map[string][]Path)
	accepted := 0

	for _, start := range starts {
		if opts.MaxPaths > 0 && accepted >= opts.MaxPaths {
			break
		}
		w := &walker{
			g:        g,
			opts:     opts,
			visited:  map[string]bool{start: true},
			byDoctor: byDoctor,
			accepted: &accepted,
		}
		w.walk(start, nil)
	}

	if opts.MaxDoctors > 0 && len(byDoctor) > opts.MaxDoctors {
		trimDoctors(byDoctor, opts.MaxDoctors)
	}

	return byDoctor, nil
}

// walker holds the per-start traversal state.
type walker struct {
	g        *graph.Graph
	opts     Options
	visited  map[string]bool
	byDoctor map[string][]Path
	accepted *int
}

// walk extends the current path from node. Paths are accepted only on
// reaching a doctor; doctors are terminal (a path never passes through
// one). Any other dead end is discarded.
func (w *walker) walk(node string, steps []Step) {
	if w.opts.MaxPaths > 0 && *w.accepted >= w.opts.MaxPaths {
		return
	}
	if len(steps) >= w.opts.MaxHops {
		return
	}
	for _, arc := range w.g.Neighbors(node) {
		if w.visited[arc.Target] {
			continue
		}
		next := append(steps, Step{Relation: arc.Relation, From: arc.Source, To: arc.Target, Reverse: arc.Reverse})

		ent, _ := w.g.Entity(arc.Target)
		if ent.Type == graph.TypeDoctor {
			path := Path{Steps: make([]Step, len(next))}
			copy(path.Steps, next)
			w.byDoctor[arc.Target] = append(w.byDoctor[arc.Target], path)
			*w.accepted++
			if w.opts.MaxPaths > 0 && *w.accepted >= w.opts.MaxPaths {
				return
			}
			continue
		}

		w.visited[arc.Target] = true
		w.walk(arc.Target, next)
		delete(w.visited, arc.Target)
	}
}

// trimDoctors keeps the max candidate doctors with the lowest IDs so the
// cap is deterministic.
func trimDoctors(byDoctor map[string][]Path, max int) {
	ids := make([]string, 0, len(byDoctor))
	for id := range byDoctor {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids[max:] {
		delete(byDoctor, id)
	}
}
