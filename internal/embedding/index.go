package embedding

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tanhaei/nspr/internal/graph"
)

// Errors returned by index persistence.
var (
	ErrIndexNotFound      = errors.New("embedding index not found")
	ErrUnsupportedVersion = errors.New("unsupported index version")
)

const (
	// IndexFileName is the name of the embedding index file under the
	// dataset cache directory.
	IndexFileName = "embeddings.gob"

	// CurrentIndexVersion is the format version for compatibility checking.
	// Increment on breaking changes to the index format.
	CurrentIndexVersion = 1
)

// Index is the on-disk form of an embedding table, GOB encoded with
// enough metadata to reject stale or incompatible files.
type Index struct {
	Version    int       `json:"version"`
	ModelName  string    `json:"model_name"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`

	EntityCount   int `json:"entity_count"`
	RelationCount int `json:"relation_count"`

	Entities  map[string][]float32 `json:"-"`
	Relations map[string][]float32 `json:"-"`
}

// NewIndex creates an empty index for the given model and dimension.
func NewIndex(modelName string, dims int) *Index {
	return &Index{
		Version:    CurrentIndexVersion,
		ModelName:  modelName,
		Dimensions: dims,
		CreatedAt:  time.Now(),
		Entities:   make(map[string][]float32),
		Relations:  make(map[string][]float32),
	}
}

// IndexPath returns the path of the index file under the dataset directory.
func IndexPath(dataDir string) string {
	return filepath.Join(dataDir, "cache", IndexFileName)
}

// AddEntity adds an entity vector to the index.
func (idx *Index) AddEntity(id string, vec []float32) error {
	if len(vec) != idx.Dimensions {
		return fmt.Errorf("%w: entity %q has %d, want %d", ErrDimensionMismatch, id, len(vec), idx.Dimensions)
	}
	idx.Entities[id] = vec
	idx.EntityCount = len(idx.Entities)
	return nil
}

// AddRelation adds a relation-type vector to the index.
func (idx *Index) AddRelation(rel graph.RelationType, vec []float32) error {
	if len(vec) != idx.Dimensions {
		return fmt.Errorf("%w: relation %q has %d, want %d", ErrDimensionMismatch, rel, len(vec), idx.Dimensions)
	}
	idx.Relations[string(rel)] = vec
	idx.RelationCount = len(idx.Relations)
	return nil
}

// Table converts the index to the lookup table consumed by the engine.
func (idx *Index) Table() (*Table, error) {
	t := NewTable(idx.Dimensions)
	for id, vec := range idx.Entities {
		if err := t.SetEntity(id, vec); err != nil {
			return nil, err
		}
	}
	for rel, vec := range idx.Relations {
		if err := t.SetRelation(graph.RelationType(rel), vec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Save persists the index using GOB encoding. The file is written to a
// temp path first, then renamed for atomicity.
func (idx *Index) Save(dataDir string) error {
	indexPath := IndexPath(dataDir)

	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tempPath := indexPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(idx); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, indexPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// LoadIndex reads the embedding index from the dataset directory.
// Returns ErrUnsupportedVersion for incompatible formats.
func LoadIndex(dataDir string) (*Index, error) {
	f, err := os.Open(IndexPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var idx Index
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	if idx.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'nspr index build')",
			ErrUnsupportedVersion, idx.Version, CurrentIndexVersion)
	}

	return &idx, nil
}

// IndexExists checks if the embedding index file exists.
func IndexExists(dataDir string) bool {
	_, err := os.Stat(IndexPath(dataDir))
	return err == nil
}
