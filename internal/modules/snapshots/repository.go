// Package snapshots archives scan runs so the dashboard can serve the
// latest result across restarts.
package snapshots

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/market-hunter/internal/modules/rank"
	"github.com/aristath/market-hunter/internal/modules/scoring"
)

// Repository handles scan-run database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Save archives a scan result. Cached results are not re-archived.
func (r *Repository) Save(result *rank.Result) error {
	if result.FromCache {
		return nil
	}

	records, err := msgpack.Marshal(result.Records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	diagnostics, err := msgpack.Marshal(result.Failures)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO scan_runs (id, created_at, index_set, pool_size, survived, records, diagnostics)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.GeneratedAt, result.IndexSet,
		result.PoolSize, result.Survived, records, diagnostics,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan run: %w", err)
	}

	r.log.Debug().Str("run_id", result.RunID).Int("records", len(result.Records)).Msg("Scan run archived")

	return nil
}

// Latest returns the most recent snapshot, or nil when none exist
func (r *Repository) Latest() (*Snapshot, error) {
	row := r.db.QueryRow(
		`SELECT id, created_at, index_set, pool_size, survived, records, diagnostics
		 FROM scan_runs ORDER BY created_at DESC LIMIT 1`)

	snap, err := r.scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest scan run: %w", err)
	}

	return snap, nil
}

// Get returns one snapshot by run ID, or nil when not found
func (r *Repository) Get(id string) (*Snapshot, error) {
	row := r.db.QueryRow(
		`SELECT id, created_at, index_set, pool_size, survived, records, diagnostics
		 FROM scan_runs WHERE id = ?`, id)

	snap, err := r.scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scan run: %w", err)
	}

	return snap, nil
}

// List returns summaries of the most recent runs, newest first
func (r *Repository) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, created_at, index_set, pool_size, survived
		 FROM scan_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.IndexSet, &s.PoolSize, &s.Survived); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}

	return summaries, nil
}

// Prune deletes everything but the newest `keep` runs
func (r *Repository) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}

	_, err := r.db.Exec(
		`DELETE FROM scan_runs WHERE id NOT IN (
			SELECT id FROM scan_runs ORDER BY created_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune scan runs: %w", err)
	}

	return nil
}

// scanSnapshot decodes one snapshot row
func (r *Repository) scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var (
		snap        Snapshot
		records     []byte
		diagnostics []byte
	)

	err := row.Scan(&snap.ID, &snap.CreatedAt, &snap.IndexSet,
		&snap.PoolSize, &snap.Survived, &records, &diagnostics)
	if err != nil {
		return nil, err
	}

	snap.Records = []scoring.ScoredRecord{}
	if err := msgpack.Unmarshal(records, &snap.Records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	if len(diagnostics) > 0 {
		if err := msgpack.Unmarshal(diagnostics, &snap.Failures); err != nil {
			return nil, fmt.Errorf("failed to decode diagnostics: %w", err)
		}
	}

	return &snap, nil
}
