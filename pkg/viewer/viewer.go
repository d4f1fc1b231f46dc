// Package viewer implements the read-only visualizer process: it waits
// for the Arbiter's redraw signal, renders the board and scoreboard,
// and acknowledges before the Arbiter proceeds.
package viewer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/joacoabraldes/chompchamps/pkg/shm"
	"github.com/joacoabraldes/chompchamps/pkg/state"
	"github.com/joacoabraldes/chompchamps/pkg/syncblock"
)

// Config describes which shared regions to attach to and where to
// render.
type Config struct {
	StateShm string
	SyncShm  string
	Width    int
	Height   int
	Out      io.Writer
}

// Runtime is a running viewer's attachment to a game.
type Runtime struct {
	cfg   Config
	block *state.Block
	sync  *syncblock.SyncBlock

	stateRegion *shm.Region
	syncRegion  *shm.Region
}

// Attach opens both shared regions.
func Attach(cfg Config) (*Runtime, error) {
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
	return &Runtime{cfg: cfg, block: block, sync: sb, stateRegion: stateRegion, syncRegion: syncRegion}, nil
}

// Close releases both mapped regions without unlinking them.
func (r *Runtime) Close() {
	r.stateRegion.Close()
	r.syncRegion.Close()
}

// Run loops redrawing on every master signal until the game ends.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		if err := r.sync.WaitForMaster(ctx); err != nil {
			return err
		}

		if err := r.sync.EnterReader(ctx); err != nil {
			return err
		}
		snap := r.block.Snapshot()
		gameOver := r.block.GameOver()
		if err := r.sync.ExitReader(ctx); err != nil {
			return err
		}

		render(r.cfg.Out, &snap)

		if err := r.sync.AckMaster(); err != nil {
			return err
		}
		if gameOver {
			return nil
		}
	}
}

// render draws the board followed by a scoreboard sorted by score
// descending, then valid moves ascending, then invalid moves ascending.
func render(w io.Writer, snap *state.Snapshot) {
	fmt.Fprint(w, "\033[2J\033[H")

	fmt.Fprintln(w, "Board:")
	heads := make(map[[2]int]int, len(snap.Players))
	for i, p := range snap.Players {
		heads[[2]int{p.X, p.Y}] = i
	}
	for y := 0; y < snap.Height; y++ {
		var row strings.Builder
		for x := 0; x < snap.Width; x++ {
			cell := snap.At(x, y)
			if cell.IsReward() {
				fmt.Fprintf(&row, "%2d ", int(cell))
				continue
			}
			owner, _ := cell.Owner()
			if idx, isHead := heads[[2]int{x, y}]; isHead && idx == owner {
				fmt.Fprintf(&row, "P%d*", owner+1)
			} else {
				fmt.Fprintf(&row, "p%d ", owner+1)
			}
		}
		fmt.Fprintln(w, row.String())
	}

	fmt.Fprintln(w, "\nPlayers:")
	order := make([]int, len(snap.Players))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		pa, pb := snap.Players[order[a]], snap.Players[order[b]]
		if pa.Score != pb.Score {
			return pa.Score > pb.Score
		}
		if pa.ValidMoves != pb.ValidMoves {
			return pa.ValidMoves < pb.ValidMoves
		}
		return pa.InvalidMoves < pb.InvalidMoves
	})
	for _, i := range order {
		p := snap.Players[i]
		status := "ACTIVE"
		if p.Blocked {
			status = "BLOCKED"
		}
		fmt.Fprintf(w, "%s: score=%d valid=%d invalid=%d pos=(%d,%d) %s\n",
			p.Name, p.Score, p.ValidMoves, p.InvalidMoves, p.X, p.Y, status)
	}
}
