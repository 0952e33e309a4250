// Package sqlite provides the SQLite-backed implementation of the feature
// store port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
	"github.com/seren-labs/serenade/internal/core/domain"
)

// Store persists one row per segment. The append path is serialized with a
// mutex so exactly one writer touches a segment identity at a time; reads
// need no locking because serving works off full snapshots.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens the database and runs the schema migration.
func NewStore(storagePath string) (*Store, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts or replaces one segment record. A rebuild may overwrite a
// prior extraction of the same identity; readers never observe the
// intermediate state because they hold catalog snapshots.
func (s *Store) Append(ctx context.Context, seg domain.Segment) error {
	vector, err := json.Marshal(seg.Vector.Values)
	if err != nil {
		return fmt.Errorf("sqlite: encode vector for %s: %w", seg.ID(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO segments (
			segment_id, source_id, source_path, offset_seconds,
			duration_class, intro_ratio, strategy, vector
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_id) DO UPDATE SET
			source_path=excluded.source_path,
			intro_ratio=excluded.intro_ratio,
			strategy=excluded.strategy,
			vector=excluded.vector;
	`
	if _, err := s.db.ExecContext(ctx, query,
		seg.ID(),
		seg.SourceID,
		seg.SourcePath,
		seg.OffsetSeconds,
		int(seg.DurationClass),
		seg.IntroRatio,
		string(seg.Vector.Space),
		string(vector),
	); err != nil {
		return fmt.Errorf("sqlite: save segment %s: %w", seg.ID(), err)
	}
	return nil
}

// All loads every populated segment.
func (s *Store) All(ctx context.Context) ([]domain.Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, source_path, offset_seconds, duration_class, intro_ratio, strategy, vector
		FROM segments
		ORDER BY source_id, duration_class, offset_seconds
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load segments: %w", err)
	}
	defer rows.Close()

	var out []domain.Segment
	for rows.Next() {
		var seg domain.Segment
		var durationClass int
		var strategy, vector string
		if err := rows.Scan(
			&seg.SourceID,
			&seg.SourcePath,
			&seg.OffsetSeconds,
			&durationClass,
			&seg.IntroRatio,
			&strategy,
			&vector,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan segment: %w", err)
		}
		seg.DurationClass = domain.DurationClass(durationClass)
		seg.Vector.Space = domain.Space(strategy)
		if err := json.Unmarshal([]byte(vector), &seg.Vector.Values); err != nil {
			return nil, fmt.Errorf("sqlite: decode vector for %s: %w", seg.ID(), err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate segments: %w", err)
	}
	return out, nil
}

// CountsByDurationClass reports how many segments each class holds.
func (s *Store) CountsByDurationClass(ctx context.Context) (map[domain.DurationClass]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT duration_class, COUNT(*) FROM segments GROUP BY duration_class
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: count segments: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DurationClass]int)
	for rows.Next() {
		var class, n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scan count: %w", err)
		}
		counts[domain.DurationClass(class)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate counts: %w", err)
	}
	return counts, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS segments (
		segment_id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		source_path TEXT NOT NULL,
		offset_seconds REAL NOT NULL,
		duration_class INTEGER NOT NULL,
		intro_ratio REAL NOT NULL,
		strategy TEXT NOT NULL,
		vector TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_segments_source ON segments(source_id);
	CREATE INDEX IF NOT EXISTS idx_segments_class ON segments(duration_class);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}
