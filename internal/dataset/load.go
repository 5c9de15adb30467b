package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tanhaei/nspr/internal/graph"
)

// Source file names under the dataset directory.
const (
	SymptomsFile = "symptoms.json"
	DiseasesFile = "diseases.json"
	DoctorsFile  = "doctors.json"
)

// Prefixes for the entity IDs synthesized during lowering. Fee and
// location entities belong to a single doctor; specialties and insurance
// plans are shared and keep their record names.
const (
	feePrefix = "fee:"
	locPrefix = "loc:"
)

// LoadDir reads and validates the three source collections from a
// dataset directory.
func LoadDir(dir string) (*Records, error) {
	var r Records
	if err := readJSON(filepath.Join(dir, SymptomsFile), &r.Symptoms); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, DiseasesFile), &r.Diseases); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, DoctorsFile), &r.Doctors); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Lower converts the records to graph entities and edges. Specialty,
// location, price, and insurance entities are created as encountered;
// shared ones are deduplicated. The output order is fixed by the record
// order, so the same records always produce the same snapshot.
func (r *Records) Lower() ([]graph.Entity, []graph.Edge) {
	var entities []graph.Entity
	var edges []graph.Edge
	seen := make(map[string]bool)

	add := func(e graph.Entity) {
		if !seen[e.ID] {
			seen[e.ID] = true
			entities = append(entities, e)
		}
	}

	for _, s := range r.Symptoms {
		add(graph.Entity{ID: s.ID, Type: graph.TypeSymptom})
	}

	for _, d := range r.Diseases {
		add(graph.Entity{ID: d.ID, Type: graph.TypeDisease})
		add(graph.Entity{ID: d.Specialty, Type: graph.TypeSpecialty})
		for _, s := range d.Symptoms {
			edges = append(edges, graph.Edge{Source: d.ID, Target: s, Relation: graph.HasSymptom})
		}
		edges = append(edges, graph.Edge{Source: d.ID, Target: d.Specialty, Relation: graph.RequiresSpecialty})
		for _, doc := range d.Doctors {
			edges = append(edges, graph.Edge{Source: d.ID, Target: doc, Relation: graph.TreatedBy})
		}
	}

	for _, doc := range r.Doctors {
		add(graph.Entity{ID: doc.ID, Type: graph.TypeDoctor})
		add(graph.Entity{ID: doc.Specialty, Type: graph.TypeSpecialty})
		edges = append(edges, graph.Edge{Source: doc.ID, Target: doc.Specialty, Relation: graph.PracticesSpecialty})

		feeID := feePrefix + doc.ID
		add(graph.Entity{ID: feeID, Type: graph.TypePrice, Attrs: map[string]any{graph.AttrAmount: doc.Fee}})
		edges = append(edges, graph.Edge{Source: doc.ID, Target: feeID, Relation: graph.ChargesFee})

		if len(doc.Location) == 2 {
			locID := locPrefix + doc.ID
			add(graph.Entity{ID: locID, Type: graph.TypeLocation, Attrs: map[string]any{
				graph.AttrLat: doc.Location[0],
				graph.AttrLon: doc.Location[1],
			}})
			edges = append(edges, graph.Edge{Source: doc.ID, Target: locID, Relation: graph.LocatedIn})
		}

		for _, plan := range doc.Insurance {
			add(graph.Entity{ID: plan, Type: graph.TypeInsurance})
			edges = append(edges, graph.Edge{Source: doc.ID, Target: plan, Relation: graph.AcceptsInsurance})
		}
	}

	return entities, edges
}

// BuildGraph loads the dataset directory and builds the graph snapshot,
// going through the SQLite snapshot cache when it is current.
func BuildGraph(dir string) (*graph.Graph, error) {
	hash, err := SourceHash(dir)
	if err != nil {
		return nil, err
	}

	snap, err := OpenSnapshot(dir)
	if err == nil {
		defer snap.Close()
		if current, err := snap.IsCurrent(hash); err == nil && current {
			entities, edges, err := snap.Load()
			if err == nil {
				return graph.Build(entities, edges)
			}
		}
	}

	records, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	entities, edges := records.Lower()

	if snap != nil {
		// Cache failures never fail the build; the cache is pure
		// acceleration.
		_ = snap.Store(entities, edges, hash)
	}

	return graph.Build(entities, edges)
}

// SourceHash computes a SHA-256 hash over the three source files,
// identifying the snapshot the cache was built from.
func SourceHash(dir string) (string, error) {
	h := sha256.New()
	for _, name := range []string{SymptomsFile, DiseasesFile, DoctorsFile} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("opening %s: %w", name, err)
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
		f.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
