// Package store persists extraction results in a SQLite database, one row per
// document path.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/downson/pkg/converter"
)

// ErrNotFound is returned by Get when no record exists for the path
var ErrNotFound = errors.Base("record not found")

// Record is the stored outcome of extracting one document
type Record struct {
	Path        string         `json:"path" yaml:"path"`
	RunID       string         `json:"runId" yaml:"runId"`
	Data        map[string]any `json:"data" yaml:"data"`
	Failures    int            `json:"failures" yaml:"failures"`
	Errors      int            `json:"errors" yaml:"errors"`
	ExtractedAt time.Time      `json:"extractedAt" yaml:"extractedAt"`
}

// Store manages the results database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and makes sure the schema exists
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, errors.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, errors.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			data TEXT NOT NULL,
			failures INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// Save inserts rec or replaces the record already stored for its path
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.Path == "" {
		return errors.New("record path is empty")
	}

	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}

	encoded, err := json.Marshal(converter.Portable(data))
	if err != nil {
		return errors.Errorf("encoding data of %s: %w", rec.Path, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, run_id, data, failures, errors, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			run_id = excluded.run_id,
			data = excluded.data,
			failures = excluded.failures,
			errors = excluded.errors,
			extracted_at = excluded.extracted_at`,
		rec.Path, rec.RunID, string(encoded), rec.Failures, rec.Errors,
		rec.ExtractedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Errorf("saving %s: %w", rec.Path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", rec.Path).Str("run_id", rec.RunID).Msg("saved record")

	return nil
}

// Get returns the record stored for path
func (s *Store) Get(ctx context.Context, path string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, run_id, data, failures, errors, extracted_at FROM documents WHERE path = ?`, path)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithDetails(ErrNotFound, "path", path)
	}
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	return rec, nil
}

// List returns every stored record ordered by path
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, run_id, data, failures, errors, extracted_at FROM documents ORDER BY path`)
	if err != nil {
		return nil, errors.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("iterating records: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec         Record
		data        string
		extractedAt string
	)

	if err := sc.Scan(&rec.Path, &rec.RunID, &data, &rec.Failures, &rec.Errors, &extractedAt); err != nil {
		return nil, err
	}

	decoded, err := decodeData(data)
	if err != nil {
		return nil, errors.Errorf("decoding data of %s: %w", rec.Path, err)
	}
	rec.Data = decoded

	rec.ExtractedAt, err = time.Parse(time.RFC3339Nano, extractedAt)
	if err != nil {
		return nil, errors.Errorf("parsing time of %s: %w", rec.Path, err)
	}

	return &rec, nil
}

// decodeData reads numbers back as int64 when they are integral and float64
// otherwise, matching the values extraction produces
func decodeData(data string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}

	return normalize(out).(map[string]any), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	default:
		return v
	}
}
