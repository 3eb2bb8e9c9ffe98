// Package storage provides SQLite-based persistence for run results, the
// share-code lookup table and session snapshots.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/multiplayer"
	"github.com/vovakirdan/liminal/internal/procgen"
)

var (
	// ErrShareCodeNotFound is returned when no generated level was stored under a code.
	ErrShareCodeNotFound = errors.New("storage: share code not found")
	// ErrShareCodeConflict is returned when a code is already stored for
	// different generator settings.
	ErrShareCodeConflict = errors.New("storage: share code already taken by another level")
	// ErrSnapshotNotFound is returned when a session has no stored snapshot.
	ErrSnapshotNotFound = errors.New("storage: snapshot not found")
)

const sqliteTime = "2006-01-02 15:04:05"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is the recorded outcome of one play session.
type Run struct {
	ID          int64
	LevelID     string
	MatchID     string // empty for local play
	Players     []string
	Completed   bool
	Failed      bool
	ElapsedTime float64 // ms of level time
	Backtracks  int
	EndReason   string // "completed", "failed", "quit", "disconnect"
	CreatedAt   time.Time
}

// SharedLevel maps a share code to the generator settings that produced it.
type SharedLevel struct {
	Code        string
	Fingerprint uint32
	Config      procgen.Config
	CreatedAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			match_id TEXT,
			players TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			elapsed_ms REAL NOT NULL DEFAULT 0,
			backtracks INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level_id ON runs(level_id);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(level_id, completed, elapsed_ms);

		CREATE TABLE IF NOT EXISTS shared_levels (
			code TEXT PRIMARY KEY,
			fingerprint INTEGER NOT NULL,
			config_json TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			state_json TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session_id, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(run Run) (int64, error) {
	var matchID sql.NullString
	if run.MatchID != "" {
		matchID = sql.NullString{String: run.MatchID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO runs
		 (level_id, match_id, players, completed, failed, elapsed_ms, backtracks, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.LevelID,
		matchID,
		strings.Join(run.Players, ","),
		run.Completed,
		run.Failed,
		run.ElapsedTime,
		run.Backtracks,
		run.EndReason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, level_id, match_id, players, completed, failed, elapsed_ms, backtracks, end_reason, created_at`

// RecentRuns retrieves the most recent runs, newest first. An empty levelID
// matches every level.
func (s *Store) RecentRuns(levelID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE ? = '' OR level_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		levelID, levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// BestRun returns the fastest completed run of a level, or nil if the level
// was never completed.
func (s *Store) BestRun(levelID string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE level_id = ? AND completed = 1
		 ORDER BY elapsed_ms ASC, id ASC
		 LIMIT 1`,
		levelID,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var matchID sql.NullString
	var players string
	var createdAt any

	err := row.Scan(
		&run.ID,
		&run.LevelID,
		&matchID,
		&players,
		&run.Completed,
		&run.Failed,
		&run.ElapsedTime,
		&run.Backtracks,
		&run.EndReason,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	if matchID.Valid {
		run.MatchID = matchID.String
	}
	if players != "" {
		run.Players = strings.Split(players, ",")
	}
	run.CreatedAt = parseTime(createdAt)
	return run, nil
}

// SaveSharedLevel records the settings behind a generated level so its share
// code can be resolved later. Saving the same settings again is a no-op;
// saving different settings under a stored code fails with
// ErrShareCodeConflict and keeps the first entry.
func (s *Store) SaveSharedLevel(code string, fingerprint uint32, cfg procgen.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("storage: cannot encode generator config: %w", err)
	}
	code = strings.ToUpper(code)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRow(`SELECT config_json FROM shared_levels WHERE code = ?`, code).Scan(&stored)
	switch {
	case err == nil:
		if stored != string(data) {
			return fmt.Errorf("%w: %s", ErrShareCodeConflict, code)
		}
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("storage: cannot query shared level: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO shared_levels (code, fingerprint, config_json) VALUES (?, ?, ?)`,
		code, int64(fingerprint), string(data),
	); err != nil {
		return fmt.Errorf("storage: cannot save shared level: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit shared level: %w", err)
	}
	return nil
}

// LookupShareCode resolves a share code to the generator settings stored for it.
func (s *Store) LookupShareCode(code string) (SharedLevel, error) {
	var shared SharedLevel
	var fingerprint int64
	var data string
	var createdAt any

	err := s.db.QueryRow(
		`SELECT code, fingerprint, config_json, created_at FROM shared_levels WHERE code = ?`,
		strings.ToUpper(code),
	).Scan(&shared.Code, &fingerprint, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SharedLevel{}, ErrShareCodeNotFound
	}
	if err != nil {
		return SharedLevel{}, fmt.Errorf("storage: cannot query shared level: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &shared.Config); err != nil {
		return SharedLevel{}, fmt.Errorf("storage: cannot decode generator config: %w", err)
	}
	shared.Fingerprint = uint32(fingerprint) //nolint:gosec // stored from a uint32
	shared.CreatedAt = parseTime(createdAt)
	return shared, nil
}

// SaveSnapshot stores a session snapshot. Older snapshots of the same session
// are kept; LoadSnapshot returns the newest.
func (s *Store) SaveSnapshot(sessionID string, state engine.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: cannot encode snapshot: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO snapshots (session_id, level_id, state_json) VALUES (?, ?, ?)",
		sessionID, state.ID, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the newest snapshot stored for a session.
func (s *Store) LoadSnapshot(sessionID string) (engine.State, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT state_json FROM snapshots WHERE session_id = ? ORDER BY id DESC LIMIT 1`,
		sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.State{}, ErrSnapshotNotFound
	}
	if err != nil {
		return engine.State{}, fmt.Errorf("storage: cannot query snapshot: %w", err)
	}

	var state engine.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return engine.State{}, fmt.Errorf("storage: cannot decode snapshot: %w", err)
	}
	return state, nil
}

// DeleteSnapshots removes every snapshot of a session.
func (s *Store) DeleteSnapshots(sessionID string) error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("storage: cannot delete snapshots: %w", err)
	}
	return nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveRun(Run{
		LevelID:     data.LevelID,
		MatchID:     data.MatchID,
		Players:     data.Players,
		Completed:   data.Completed,
		Failed:      data.Failed,
		ElapsedTime: data.ElapsedTime,
		Backtracks:  data.Backtracks,
		EndReason:   data.EndReason,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// LevelStats contains aggregated statistics for a level.
type LevelStats struct {
	LevelID     string
	Runs        int
	Completions int
	BestTime    float64 // ms; 0 if never completed
	LastPlayed  time.Time
}

// Stats retrieves aggregated statistics for every level that has been played,
// ordered by level id.
func (s *Store) Stats() ([]LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id, COUNT(*), COALESCE(SUM(completed), 0),
		        COALESCE(MIN(CASE WHEN completed = 1 THEN elapsed_ms END), 0), MAX(created_at)
		 FROM runs
		 GROUP BY level_id
		 ORDER BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	defer rows.Close()

	var stats []LevelStats
	for rows.Next() {
		var st LevelStats
		var lastPlayed any
		if err := rows.Scan(&st.LevelID, &st.Runs, &st.Completions, &st.BestTime, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
