// Package history keeps an optional SQLite log of generation runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/ogadix/splash/internal/paths"

	_ "modernc.org/sqlite"
)

// File is one image written by a run.
type File struct {
	Name   string
	Scale  string
	Bytes  int
	SHA256 string
}

// Run is one invocation that wrote splash images.
type Run struct {
	ID         string
	Time       time.Time
	IconPath   string
	IconSize   int
	Style      string
	Background string
	OutputDir  string
	Files      []File
}

// TotalBytes sums the sizes of the run's files.
func (r Run) TotalBytes() int {
	return lo.SumBy(r.Files, func(f File) int { return f.Bytes })
}

// timeLayout is fixed-width UTC so stored timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns DataDir()/history.db.
func DefaultPath() string {
	return filepath.Join(paths.DataDir(), paths.HistoryFileName)
}

// Open opens (or creates) the database at path and creates the schema.
// The parent directory is created if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection; one connection keeps foreign keys on.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT    NOT NULL UNIQUE,
    timestamp   TEXT    NOT NULL,
    icon_path   TEXT    NOT NULL,
    icon_size   INTEGER NOT NULL,
    style       TEXT    NOT NULL,
    background  TEXT    NOT NULL,
    output_dir  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_seq  INTEGER NOT NULL REFERENCES runs(seq) ON DELETE CASCADE,
    name     TEXT    NOT NULL,
    scale    TEXT    NOT NULL,
    bytes    INTEGER NOT NULL,
    sha256   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_files_run      ON files(run_seq);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and its files in one transaction.
func (s *Store) Record(r Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (id, timestamp, icon_path, icon_size, style, background, output_dir)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Time.UTC().Format(timeLayout), r.IconPath, r.IconSize, r.Style, r.Background, r.OutputDir,
	)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, f := range r.Files {
		if _, err := tx.Exec(
			`INSERT INTO files (run_seq, name, scale, bytes, sha256) VALUES (?, ?, ?, ?, ?)`,
			seq, f.Name, f.Scale, f.Bytes, f.SHA256,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(limit int) ([]Run, error) {
	query := `SELECT seq, id, timestamp, icon_path, icon_size, style, background, output_dir
		FROM runs ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	var seqs []int64
	for rows.Next() {
		var r Run
		var seq int64
		var ts string
		if err := rows.Scan(&seq, &r.ID, &ts, &r.IconPath, &r.IconSize, &r.Style, &r.Background, &r.OutputDir); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("run %s: parse timestamp: %w", r.ID, err)
		}
		r.Time = t
		runs = append(runs, r)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the only connection before the files query.
	rows.Close()
	if len(runs) == 0 {
		return nil, nil
	}

	files, err := s.files(lo.Min(seqs))
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Files = files[seqs[i]]
	}
	return runs, nil
}

// files returns the files of every run with seq >= minSeq, keyed by run.
func (s *Store) files(minSeq int64) (map[int64][]File, error) {
	type fileRow struct {
		seq int64
		f   File
	}

	rows, err := s.db.Query(
		`SELECT run_seq, name, scale, bytes, sha256 FROM files
		 WHERE run_seq >= ? ORDER BY run_seq, id`, minSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []fileRow
	for rows.Next() {
		var fr fileRow
		if err := rows.Scan(&fr.seq, &fr.f.Name, &fr.f.Scale, &fr.f.Bytes, &fr.f.SHA256); err != nil {
			return nil, err
		}
		all = append(all, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	grouped := lo.GroupBy(all, func(fr fileRow) int64 { return fr.seq })
	return lo.MapValues(grouped, func(frs []fileRow, _ int64) []File {
		return lo.Map(frs, func(fr fileRow, _ int) File { return fr.f })
	}), nil
}

// Clean removes runs older than cutoff and returns how many were removed.
func (s *Store) Clean(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM runs WHERE timestamp < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Clear deletes all runs.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}

// Log records run in the default store. Errors are printed to stderr but
// never returned: history is best-effort.
func Log(run Run) {
	s, err := Open(DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	defer s.Close()
	if err := s.Record(run); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
}
