// Package policy implements the move-selection strategies a player
// process plugs into its per-turn loop. Every policy is a pure function
// of a state.Snapshot: it never touches shared memory directly, so it
// can be unit tested with a hand-built Snapshot and no IPC at all.
package policy

import (
	"math/rand"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// Policy selects the next move for player index my in snapshot snap,
// using rng for any tie-break or exploration randomness. It returns
// false when it has no move to offer, mirroring a player process that
// finds itself with no valid direction on its turn. Greedy and Trapper
// return false when no legal move exists; Wanderer never does.
type Policy interface {
	Select(snap *state.Snapshot, my int, rng *rand.Rand) (state.Direction, bool)
}

// Func adapts a plain function to the Policy interface.
type Func func(snap *state.Snapshot, my int, rng *rand.Rand) (state.Direction, bool)

// Select calls f.
func (f Func) Select(snap *state.Snapshot, my int, rng *rand.Rand) (state.Direction, bool) {
	return f(snap, my, rng)
}

// candidate is one legal move under consideration.
type candidate struct {
	dir   state.Direction
	tx    int
	ty    int
	value int
}

// legalMoves lists every direction that leads to an in-bounds cell still
// holding a reward, the same "candidate gathering under the lock" step
// every original player implementation performs before scoring anything.
func legalMoves(snap *state.Snapshot, my int) []candidate {
	p := snap.Players[my]
	var out []candidate
	for _, d := range state.AllDirections {
		tx, ty, ok := snap.TargetCell(p.X, p.Y, d)
		if !ok {
			continue
		}
		cell := snap.At(tx, ty)
		if !cell.IsReward() {
			continue
		}
		out = append(out, candidate{dir: d, tx: tx, ty: ty, value: int(cell)})
	}
	return out
}

// pickBest returns the direction of the highest-scoring candidate,
// breaking ties uniformly at random with rng.
func pickBest(cands []candidate, score func(candidate) float64, rng *rand.Rand) state.Direction {
	best := score(cands[0])
	bests := []state.Direction{cands[0].dir}
	for _, c := range cands[1:] {
		s := score(c)
		switch {
		case s > best:
			best = s
			bests = []state.Direction{c.dir}
		case s == best:
			bests = append(bests, c.dir)
		}
	}
	if len(bests) == 1 {
		return bests[0]
	}
	return bests[rng.Intn(len(bests))]
}
