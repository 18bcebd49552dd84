package evolution

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Load when no gains were ever persisted for a
// package. Callers are expected to fall back to DefaultParams.
var ErrNotFound = errors.New("no stored pid params for package")

// Store persists per-application PID gains in an embedded sqlite database.
// Upserts are serialized so overlapping evaluation windows for the same
// package cannot lose updates; reads of independent keys never block each
// other.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenStore opens (and creates, if needed) the database at path. Schema
// creation is idempotent.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pid param store %s: %w", path, err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS pid_params (
		id TEXT PRIMARY KEY,
		kp REAL NOT NULL,
		ki REAL NOT NULL,
		kd REAL NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create pid_params schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(pkg string) (PidParams, error) {
	var params PidParams
	err := s.db.QueryRow(
		"SELECT kp, ki, kd FROM pid_params WHERE id = ?", pkg,
	).Scan(&params.Kp, &params.Ki, &params.Kd)
	if errors.Is(err, sql.ErrNoRows) {
		return PidParams{}, fmt.Errorf("%w: %s", ErrNotFound, pkg)
	}
	if err != nil {
		return PidParams{}, fmt.Errorf("failed to load pid params for %s: %w", pkg, err)
	}

	return params, nil
}

// Save upserts the gains for pkg: inserted if absent, all three fields
// overwritten if present.
func (s *Store) Save(pkg string, params PidParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO pid_params (id, kp, ki, kd)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kp = excluded.kp,
			ki = excluded.ki,
			kd = excluded.kd`,
		pkg, params.Kp, params.Ki, params.Kd)
	if err != nil {
		return fmt.Errorf("failed to save pid params for %s: %w", pkg, err)
	}

	return nil
}
