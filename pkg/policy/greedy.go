package policy

import (
	"math/rand"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// Greedy prefers a target cell that is not adjacent to any other
// player's head, then picks the highest-reward cell among its
// preference, falling back to the full candidate set when every legal
// move sits next to an opponent. Ties are broken uniformly at random.
var Greedy Policy = Func(greedySelect)

func greedySelect(snap *state.Snapshot, my int, rng *rand.Rand) (state.Direction, bool) {
	cands := legalMoves(snap, my)
	if len(cands) == 0 {
		return 0, false
	}

	var preferred []candidate
	for _, c := range cands {
		if !nearOtherHead(snap, my, c.tx, c.ty) {
			preferred = append(preferred, c)
		}
	}
	pool := cands
	if len(preferred) > 0 {
		pool = preferred
	}

	dir := pickBest(pool, func(c candidate) float64 { return float64(c.value) }, rng)
	return dir, true
}

func nearOtherHead(snap *state.Snapshot, my, tx, ty int) bool {
	for i, p := range snap.Players {
		if i == my {
			continue
		}
		if abs(p.X-tx) <= 1 && abs(p.Y-ty) <= 1 {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
