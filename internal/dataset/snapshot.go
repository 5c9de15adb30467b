package dataset

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tanhaei/nspr/internal/graph"
)

// SnapshotFile is the cache database name under the dataset cache
// directory.
const SnapshotFile = "snapshot.db"

// Snapshot is the SQLite cache of a lowered dataset. It only accelerates
// reloads: a cache hit must produce exactly the entities and edges the
// JSON sources would.
type Snapshot struct {
	db *sql.DB
}

// SnapshotPath returns the cache database path under a dataset directory.
func SnapshotPath(dir string) string {
	return filepath.Join(dir, "cache", SnapshotFile)
}

// OpenSnapshot opens (creating if needed) the snapshot cache for a
// dataset directory.
func OpenSnapshot(dir string) (*Snapshot, error) {
	path := SnapshotPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	s := &Snapshot{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

func (s *Snapshot) createTables() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS entities (
  seq INTEGER PRIMARY KEY,
  id TEXT NOT NULL,
  type TEXT NOT NULL,
  attrs TEXT
)`,
		`CREATE TABLE IF NOT EXISTS edges (
  seq INTEGER PRIMARY KEY,
  source TEXT NOT NULL,
  target TEXT NOT NULL,
  relation TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating snapshot tables: %w", err)
		}
	}
	return nil
}

// IsCurrent reports whether the cache was built from sources with the
// given hash.
func (s *Snapshot) IsCurrent(hash string) (bool, error) {
	var stored string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'source_hash'`).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == hash, nil
}

// Store replaces the cached snapshot with the given entities and edges.
func (s *Snapshot) Store(entities []graph.Entity, edges []graph.Edge, hash string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"entities", "edges", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, e := range entities {
		var attrs []byte
		if e.Attrs != nil {
			attrs, err = json.Marshal(e.Attrs)
			if err != nil {
				return fmt.Errorf("encoding attrs for %s: %w", e.ID, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO entities (seq, id, type, attrs) VALUES (?, ?, ?, ?)`,
			i, e.ID, string(e.Type), string(attrs)); err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.ID, err)
		}
	}

	for i, e := range edges {
		if _, err := tx.Exec(`INSERT INTO edges (seq, source, target, relation) VALUES (?, ?, ?, ?)`,
			i, e.Source, e.Target, string(e.Relation)); err != nil {
			return fmt.Errorf("inserting edge %s: %w", e, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('source_hash', ?)`, hash); err != nil {
		return fmt.Errorf("storing source hash: %w", err)
	}

	return tx.Commit()
}

// Load reads the cached entities and edges back in their original order.
func (s *Snapshot) Load() ([]graph.Entity, []graph.Edge, error) {
	rows, err := s.db.Query(`SELECT id, type, attrs FROM entities ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []graph.Entity
	for rows.Next() {
		var e graph.Entity
		var typ, attrs string
		if err := rows.Scan(&e.ID, &typ, &attrs); err != nil {
			return nil, nil, err
		}
		e.Type = graph.EntityType(typ)
		if attrs != "" {
			if err := json.Unmarshal([]byte(attrs), &e.Attrs); err != nil {
				return nil, nil, fmt.Errorf("decoding attrs for %s: %w", e.ID, err)
			}
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := s.db.Query(`SELECT source, target, relation FROM edges ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []graph.Edge
	for edgeRows.Next() {
		var e graph.Edge
		var rel string
		if err := edgeRows.Scan(&e.Source, &e.Target, &rel); err != nil {
			return nil, nil, err
		}
		e.Relation = graph.RelationType(rel)
		edges = append(edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, nil, err
	}

	return entities, edges, nil
}
