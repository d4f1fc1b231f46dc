package arbiter

import (
	"fmt"
	"time"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// Config holds everything the Arbiter needs to start a game: board
// dimensions, pacing, the optional viewer binary, and the player
// binaries to spawn.
type Config struct {
	Width       int
	Height      int
	DelayMs     int
	TimeoutSec  int
	Seed        int64
	ViewerPath  string
	PlayerPaths []string
	// RecordDir, if non-empty, tells the Arbiter to keep a per-run
	// SQLite event ledger under this directory.
	RecordDir string
}

// Validate checks the config against the board and player-count limits
// the rest of the package assumes hold.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("arbiter: width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if len(c.PlayerPaths) == 0 {
		return fmt.Errorf("arbiter: at least one player must be specified")
	}
	if len(c.PlayerPaths) > state.MaxPlayers {
		return fmt.Errorf("arbiter: at most %d players are supported, got %d", state.MaxPlayers, len(c.PlayerPaths))
	}
	if c.DelayMs < 0 || c.TimeoutSec <= 0 {
		return fmt.Errorf("arbiter: delay and timeout must be non-negative/positive")
	}
	return nil
}

func (c Config) delay() time.Duration    { return time.Duration(c.DelayMs) * time.Millisecond }
func (c Config) timeout() time.Duration  { return time.Duration(c.TimeoutSec) * time.Second }
func (c Config) hasViewer() bool         { return c.ViewerPath != "" }
func (c Config) playerCount() int        { return len(c.PlayerPaths) }
