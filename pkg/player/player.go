// Package player implements the per-turn control loop a player process
// runs: discover which slot the Arbiter assigned it, then repeatedly
// wait for a turn token, snapshot the board, ask a policy for a move,
// and write exactly one byte to stdout.
package player

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
	"github.com/joacoabraldes/chompchamps/pkg/log"
	"github.com/joacoabraldes/chompchamps/pkg/policy"
	"github.com/joacoabraldes/chompchamps/pkg/shm"
	"github.com/joacoabraldes/chompchamps/pkg/state"
	"github.com/joacoabraldes/chompchamps/pkg/syncblock"
)

// Config describes everything a Runtime needs to attach to a running
// game and start playing.
type Config struct {
	StateShm string
	SyncShm  string
	Width    int
	Height   int
	Policy   policy.Policy
	Out      *os.File
}

// Runtime is one player process's view of the game.
type Runtime struct {
	cfg   Config
	block *state.Block
	sync  *syncblock.SyncBlock

	stateRegion *shm.Region
	syncRegion  *shm.Region

	index int
	rng   *rand.Rand
}

// Attach opens the state and sync shared memory regions and blocks,
// scanning for this process's assigned slot before returning.
func Attach(ctx context.Context, cfg Config) (*Runtime, error) {
	stateRegion, err := shm.Open(cfg.StateShm, state.Size(cfg.Width, cfg.Height), false)
	if err != nil {
		return nil, err
	}
	syncRegion, err := shm.Open(cfg.SyncShm, syncblock.Size, false)
	if err != nil {
		stateRegion.Close()
		return nil, err
	}

	block, err := state.New(stateRegion, cfg.Width, cfg.Height)
	if err != nil {
		stateRegion.Close()
		syncRegion.Close()
		return nil, err
	}
	sb, err := syncblock.New(syncRegion)
	if err != nil {
		stateRegion.Close()
		syncRegion.Close()
		return nil, err
	}

	r := &Runtime{
		cfg:         cfg,
		block:       block,
		sync:        sb,
		stateRegion: stateRegion,
		syncRegion:  syncRegion,
		index:       -1,
		rng:         rand.New(rand.NewSource(int64(os.Getpid()) ^ time.Now().UnixNano())),
	}

	if err := r.findIndex(ctx); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// findIndex polls the player table for this process's PID, retrying for
// up to 5 seconds: the Arbiter forks the child before it can guarantee
// the child's slot is already stamped, so a brand-new player process
// legitimately might not find itself on the first look.
func (r *Runtime) findIndex(ctx context.Context) error {
	pid := int32(os.Getpid())
	const maxAttempts = 500
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if r.block.GameOver() {
			return ipcerr.New(ipcerr.PolicyGaveUp, "player.findIndex", nil)
		}
		if err := r.sync.EnterReader(ctx); err != nil {
			return err
		}
		idx := -1
		for i := 0; i < r.block.PlayerCount(); i++ {
			if r.block.Player(i).PID() == pid {
				idx = i
				break
			}
		}
		if err := r.sync.ExitReader(ctx); err != nil {
			return err
		}
		if idx != -1 {
			r.index = idx
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return ipcerr.New(ipcerr.ResourceUnavailable, "player.findIndex", nil)
}

// Run drives the per-turn loop until the game ends, this player is
// blocked, or writing a move fails.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		if err := r.sync.WaitTurn(ctx, r.index); err != nil {
			return err
		}
		if r.block.GameOver() {
			return nil
		}

		if err := r.sync.EnterReader(ctx); err != nil {
			return err
		}
		blocked := r.block.Player(r.index).Blocked()
		gameOver := r.block.GameOver()
		snap := r.block.Snapshot()
		if err := r.sync.ExitReader(ctx); err != nil {
			return err
		}
		if gameOver || blocked {
			return nil
		}

		dir, ok := r.cfg.Policy.Select(&snap, r.index, r.rng)
		if !ok {
			// The policy has nothing legal to offer. Emitting nothing
			// would leave this player's turn token un-rearmed forever,
			// since only a byte actually received re-arms it: write the
			// placeholder instead, so the Arbiter counts it as an
			// invalid move and this player stays in the turn rotation.
			log.Debug("player %d: no move available, emitting placeholder", r.index)
			if _, err := r.cfg.Out.Write([]byte{byte(state.GiveUp)}); err != nil {
				return ipcerr.New(ipcerr.BrokenPipe, "player.Run", err)
			}
			continue
		}

		// The writer lock is acquired here purely as an ordering device:
		// it mutates nothing. Its only job is to serialise this
		// emission with the Arbiter's own view of the world, so the
		// re-check below can't race a concurrent Arbiter mutation of
		// this player's record.
		if err := r.sync.EnterWriter(ctx); err != nil {
			return err
		}
		me := r.block.Player(r.index)
		head := snap.Players[r.index]
		stale := int(me.X) != head.X || int(me.Y) != head.Y || me.Blocked()
		if stale {
			if err := r.sync.ExitWriter(); err != nil {
				return err
			}
			log.Debug("player %d: snapshot went stale before emission, retrying", r.index)
			continue
		}

		_, writeErr := r.cfg.Out.Write([]byte{byte(dir)})
		if err := r.sync.ExitWriter(); err != nil {
			return err
		}
		if writeErr != nil {
			return ipcerr.New(ipcerr.BrokenPipe, "player.Run", writeErr)
		}
	}
}

// Close releases the mapped regions without unlinking them: only the
// Arbiter owns their lifetime.
func (r *Runtime) Close() {
	if r.stateRegion != nil {
		r.stateRegion.Close()
	}
	if r.syncRegion != nil {
		r.syncRegion.Close()
	}
}
