// Package recorder keeps a per-run SQLite event ledger of every move
// the Arbiter processes, for post-mortem inspection of one game. Each
// run gets its own database file named after a fresh UUID; nothing is
// carried over between runs, and only the Arbiter ever writes to it.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

const schema = `
CREATE TABLE players (
	idx  INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE moves (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	player_idx    INTEGER NOT NULL,
	raw_byte      INTEGER NOT NULL,
	accepted      INTEGER NOT NULL,
	score_after   INTEGER NOT NULL,
	x_after       INTEGER NOT NULL,
	y_after       INTEGER NOT NULL
);
`

// Recorder appends move events to a single-writer SQLite database.
type Recorder struct {
	db     *sql.DB
	RunID  string
	Path   string
}

// New creates a fresh per-run database under dir, named by a new UUID,
// and registers the game's players.
func New(ctx context.Context, dir string, snap state.Snapshot) (*Recorder, error) {
	runID := uuid.NewString()
	path := filepath.Join(dir, fmt.Sprintf("chompchamps-%s.sqlite3", runID))

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: begin: %w", err)
	}
	for i, p := range snap.Players {
		if _, err := tx.ExecContext(ctx, `INSERT INTO players (idx, name) VALUES (?, ?)`, i, p.Name); err != nil {
			tx.Rollback()
			db.Close()
			return nil, fmt.Errorf("recorder: insert player: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: commit players: %w", err)
	}

	return &Recorder{db: db, RunID: runID, Path: path}, nil
}

// Move appends one processed move to the ledger.
func (r *Recorder) Move(ctx context.Context, playerIdx int, raw byte, accepted bool, scoreAfter uint32, xAfter, yAfter int) error {
	const q = `
	INSERT INTO moves (player_idx, raw_byte, accepted, score_after, x_after, y_after)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	acceptedInt := 0
	if accepted {
		acceptedInt = 1
	}
	_, err := r.db.ExecContext(ctx, q, playerIdx, raw, acceptedInt, scoreAfter, xAfter, yAfter)
	if err != nil {
		return fmt.Errorf("recorder: insert move: %w", err)
	}
	return nil
}

// Close closes the underlying database handle. The file itself is left
// on disk for later inspection; recorder does not implement cross-run
// persistence or replay.
func (r *Recorder) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
