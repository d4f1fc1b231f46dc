// Package arbiter implements the master process: it owns both shared
// memory regions, spawns the viewer and player children, runs the
// event-driven scheduler that reads and validates moves, and reports
// the final standings.
package arbiter

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
	"github.com/joacoabraldes/chompchamps/pkg/log"
	"github.com/joacoabraldes/chompchamps/pkg/recorder"
	"github.com/joacoabraldes/chompchamps/pkg/shm"
	"github.com/joacoabraldes/chompchamps/pkg/state"
	"github.com/joacoabraldes/chompchamps/pkg/syncblock"
)

const (
	stateShmName = "/game_state"
	syncShmName  = "/game_sync"
)

// playerProc tracks the live resources the Arbiter owns for one player
// child: the read end of its output pipe and the spawned process.
type playerProc struct {
	name   string
	path   string
	read   *os.File
	cmd    *exec.Cmd
	closed bool
}

// Arbiter owns the shared regions and children for one run of the game.
type Arbiter struct {
	cfg Config
	rng *rand.Rand

	stateRegion *shm.Region
	syncRegion  *shm.Region
	block       *state.Block
	sync        *syncblock.SyncBlock

	players []*playerProc
	viewer  *exec.Cmd

	recorder *recorder.Recorder

	lastValidMove time.Time
}

// New creates and initialises both shared regions and the StateBlock,
// but does not yet spawn any process.
func New(cfg Config) (*Arbiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	stateRegion, err := shm.Create(stateShmName, state.Size(cfg.Width, cfg.Height), 0o666, false, 0)
	if err != nil {
		return nil, err
	}
	syncRegion, err := shm.Create(syncShmName, syncblock.Size, 0o666, false, 0)
	if err != nil {
		stateRegion.Destroy()
		return nil, err
	}

	block, err := state.New(stateRegion, cfg.Width, cfg.Height)
	if err != nil {
		stateRegion.Destroy()
		syncRegion.Destroy()
		return nil, err
	}
	sb, err := syncblock.New(syncRegion)
	if err != nil {
		stateRegion.Destroy()
		syncRegion.Destroy()
		return nil, err
	}

	a := &Arbiter{
		cfg:         cfg,
		rng:         rng,
		stateRegion: stateRegion,
		syncRegion:  syncRegion,
		block:       block,
		sync:        sb,
	}

	block.Init(cfg.Width, cfg.Height, cfg.playerCount())
	sb.Init()
	seedBoard(block, cfg.Width, cfg.Height, rng)
	placePlayers(block, cfg.Width, cfg.Height, cfg.playerCount())
	for i := range cfg.PlayerPaths {
		block.Player(i).SetName(fmt.Sprintf("Player%d", i+1))
	}

	return a, nil
}

// Destroy releases both shared regions, unlinking their names. Only the
// Arbiter calls this: it created both regions, so it owns their
// lifetime end to end.
func (a *Arbiter) Destroy() {
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.stateRegion != nil {
		a.stateRegion.Destroy()
	}
	if a.syncRegion != nil {
		a.syncRegion.Destroy()
	}
}

// Spawn starts the viewer (if configured) and every player process,
// performs the initial view handshake, and issues the first round of
// turn tokens.
func (a *Arbiter) Spawn(ctx context.Context) error {
	if a.cfg.hasViewer() {
		cmd := exec.CommandContext(ctx, a.cfg.ViewerPath,
			strconv.Itoa(a.cfg.Width), strconv.Itoa(a.cfg.Height))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return ipcerr.New(ipcerr.ResourceUnavailable, "arbiter.Spawn viewer", err)
		}
		a.viewer = cmd

		if err := a.sync.SignalView(); err != nil {
			return err
		}
		ackCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.sync.WaitViewAck(ackCtx); err != nil {
			return err
		}
	}

	for i, path := range a.cfg.PlayerPaths {
		r, w, err := os.Pipe()
		if err != nil {
			return ipcerr.New(ipcerr.ResourceUnavailable, "arbiter.Spawn pipe", err)
		}
		cmd := exec.CommandContext(ctx, path,
			strconv.Itoa(a.cfg.Width), strconv.Itoa(a.cfg.Height))
		cmd.Stdout = w
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			r.Close()
			w.Close()
			return ipcerr.New(ipcerr.ResourceUnavailable, "arbiter.Spawn player", err)
		}
		w.Close()

		a.block.Player(i).SetPID(int32(cmd.Process.Pid))
		a.players = append(a.players, &playerProc{
			name: a.block.Player(i).Name(),
			path: path,
			read: r,
			cmd:  cmd,
		})
	}

	if a.cfg.RecordDir != "" {
		if err := a.sync.EnterReader(ctx); err != nil {
			return err
		}
		snap := a.block.Snapshot()
		if err := a.sync.ExitReader(ctx); err != nil {
			return err
		}
		rec, err := recorder.New(ctx, a.cfg.RecordDir, snap)
		if err != nil {
			log.Warn("recorder disabled: %v", err)
		} else {
			a.recorder = rec
			log.Info("recording run %s to %s", rec.RunID, rec.Path)
		}
	}

	a.lastValidMove = time.Now()
	for i := range a.players {
		if err := a.sync.SignalTurn(i); err != nil {
			return err
		}
	}
	return nil
}
