// Package store records evaluation runs in a SQLite database.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Run is one evaluation of one model against a set of N-best lists.
type Run struct {
	ID        string
	Model     string
	CreatedAt time.Time
	// Perplexity is NaN when it was not measured.
	Perplexity float64
	WER        float64
	BestPath   float64
	WorstPath  float64
	Random     float64
	Params     map[string]float64
	Lists      []ListOutcome
}

// ListOutcome is the rescoring outcome of one N-best list.
type ListOutcome struct {
	ListID   string
	Chosen   []string
	Distance float64
	Ties     int
}

// Store persists runs.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	created_at TEXT NOT NULL,
	perplexity REAL,
	wer REAL NOT NULL,
	best_path REAL NOT NULL,
	worst_path REAL NOT NULL,
	random REAL NOT NULL,
	params_json TEXT
);

CREATE TABLE IF NOT EXISTS list_results (
	run_id TEXT NOT NULL,
	list_id TEXT NOT NULL,
	chosen TEXT NOT NULL,
	distance REAL NOT NULL,
	ties INTEGER NOT NULL,
	PRIMARY KEY(run_id, list_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model, created_at);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// SaveRun inserts run with its list outcomes and returns the assigned id.
// A zero CreatedAt is set to the current time.
func (s *Store) SaveRun(ctx context.Context, run *Run) (string, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.ID = s.newID(run.CreatedAt)

	params, err := json.Marshal(run.Params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	var perplexity sql.NullFloat64
	if !math.IsNaN(run.Perplexity) {
		perplexity = sql.NullFloat64{Float64: run.Perplexity, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, model, created_at, perplexity, wer, best_path, worst_path, random, params_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.CreatedAt.Format(time.RFC3339Nano), perplexity,
		run.WER, run.BestPath, run.WorstPath, run.Random, string(params))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO list_results (run_id, list_id, chosen, distance, ties) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for _, l := range run.Lists {
		if _, err := stmt.ExecContext(ctx, run.ID, l.ListID, strings.Join(l.Chosen, " "), l.Distance, l.Ties); err != nil {
			return "", fmt.Errorf("insert list %s: %w", l.ListID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns stored runs, newest first, without list outcomes.
// An empty model matches every model.
func (s *Store) ListRuns(ctx context.Context, model string, limit int) ([]Run, error) {
	query := `SELECT id, model, created_at, perplexity, wer, best_path, worst_path, random, params_json FROM runs`
	var args []any
	if model != "" {
		query += ` WHERE model = ?`
		args = append(args, model)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with id and its list outcomes in list order.
func (s *Store) GetRun(ctx context.Context, id string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, model, created_at, perplexity, wer, best_path, worst_path, random, params_json FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT list_id, chosen, distance, ties FROM list_results WHERE run_id = ? ORDER BY list_id`, id)
	if err != nil {
		return Run{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var l ListOutcome
		var chosen string
		if err := rows.Scan(&l.ListID, &chosen, &l.Distance, &l.Ties); err != nil {
			return Run{}, false, err
		}
		l.Chosen = strings.Fields(chosen)
		run.Lists = append(run.Lists, l)
	}
	return run, true, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var created string
	var perplexity sql.NullFloat64
	var params sql.NullString
	err := sc.Scan(&run.ID, &run.Model, &created, &perplexity, &run.WER,
		&run.BestPath, &run.WorstPath, &run.Random, &params)
	if err != nil {
		return Run{}, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	run.Perplexity = math.NaN()
	if perplexity.Valid {
		run.Perplexity = perplexity.Float64
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &run.Params); err != nil {
			return Run{}, fmt.Errorf("decode params: %w", err)
		}
	}
	return run, nil
}
