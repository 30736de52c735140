package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"hermes/internal/split"
)

// Run describes one completed invocation of the splitter.
type Run struct {
	ID         string
	Cuesheet   string
	Source     string
	Preset     string
	Template   string
	OutDir     string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Skipped    int
	Failed     int
}

// TrackRecord describes the outcome of a single track within a run.
type TrackRecord struct {
	RunID       string
	TrackNumber int
	Title       string
	OutputPath  string
	Outcome     string
	Error       string
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun inserts a run and its per-track outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, outcomes []split.Outcome) error {
	if run.ID == "" {
		return errors.New("run id is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	summary := split.Summarize(outcomes)
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, cuesheet, source, preset, template, out_dir,
            started_at, finished_at, succeeded, skipped, failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Cuesheet,
		run.Source,
		run.Preset,
		run.Template,
		run.OutDir,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.Succeeded,
		summary.Skipped,
		summary.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, outcome := range outcomes {
		errMsg := ""
		if outcome.Err != nil {
			errMsg = outcome.Err.Error()
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_tracks (run_id, track_number, title, output_path, outcome, error)
             VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID,
			outcome.TrackNumber,
			outcome.TrackTitle,
			outcome.OutputPath,
			outcome.Kind.String(),
			nullableString(errMsg),
		)
		if err != nil {
			return fmt.Errorf("insert track %d: %w", outcome.TrackNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, cuesheet, source, preset, template, out_dir,
                started_at, finished_at, succeeded, skipped, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished string
		)
		if err := rows.Scan(
			&run.ID, &run.Cuesheet, &run.Source, &run.Preset, &run.Template,
			&run.OutDir, &started, &finished,
			&run.Succeeded, &run.Skipped, &run.Failed,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// TracksForRun returns the per-track outcomes recorded for a run, in track order.
func (s *Store) TracksForRun(ctx context.Context, runID string) ([]TrackRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, track_number, title, output_path, outcome, error
         FROM run_tracks WHERE run_id = ? ORDER BY track_number`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []TrackRecord
	for rows.Next() {
		var (
			track  TrackRecord
			errMsg sql.NullString
		)
		if err := rows.Scan(
			&track.RunID, &track.TrackNumber, &track.Title,
			&track.OutputPath, &track.Outcome, &errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		track.Error = errMsg.String
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return tracks, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
