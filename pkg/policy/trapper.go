package policy

import (
	"math/rand"

	"github.com/joacoabraldes/chompchamps/pkg/state"
	"github.com/solarlune/resolv"
)

// Trapper favours moves that grow its own uniquely-reachable territory
// while shrinking everyone else's, estimated with a Chebyshev-distance
// Voronoi partition of the board rather than raw immediate reward. It
// tracks claimed cells as static resolv.Object occupants of a resolv.Space
// sized one cell per grid square, and asks the space which cells are
// still open rather than indexing the board array directly.
type Trapper struct {
	// TopK bounds how many immediate-value candidates get the full
	// partition treatment; the rest are discarded up front the way the
	// original prunes before running its more expensive scoring pass.
	TopK int
	// Alpha weights this player's own uniquely-reachable territory.
	Alpha float64
	// Beta weights the combined uniquely-reachable territory of every
	// opponent, subtracted from the score.
	Beta float64
}

// NewTrapper returns a Trapper with the tuning the original strategy
// shipped with.
func NewTrapper() *Trapper {
	return &Trapper{TopK: 3, Alpha: 1.0, Beta: 1.4}
}

func (t *Trapper) Select(snap *state.Snapshot, my int, rng *rand.Rand) (state.Direction, bool) {
	cands := legalMoves(snap, my)
	if len(cands) == 0 {
		return 0, false
	}

	topK := t.TopK
	if topK <= 0 || topK > len(cands) {
		topK = len(cands)
	}
	pruned := append([]candidate(nil), cands...)
	sortByValueDesc(pruned)
	pruned = pruned[:topK]

	space := occupancySpace(snap)

	bestScore := negInf
	best := pruned[0].dir
	for _, c := range pruned {
		mine, opponents := reachableTerritory(space, snap, my, c)
		score := float64(c.value) + t.Alpha*mine - t.Beta*opponents
		if score > bestScore {
			bestScore = score
			best = c.dir
		}
	}
	return best, true
}

const negInf float64 = -1 << 60

func sortByValueDesc(cs []candidate) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].value > cs[j-1].value; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// occupancySpace builds a resolv.Space with one cell per board square,
// populated with a static Object wherever the board is already claimed.
func occupancySpace(snap *state.Snapshot) *resolv.Space {
	space := resolv.NewSpace(snap.Width, snap.Height, 1, 1)
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			if !snap.At(x, y).IsReward() {
				space.Add(resolv.NewObject(float64(x), float64(y), 1, 1, "claimed"))
			}
		}
	}
	return space
}

func isOpen(space *resolv.Space, x, y int) bool {
	return space.CheckCells(x, y, 1, 1, "claimed") == nil
}

// reachableTerritory runs a multi-source BFS from every player's head
// (this player's head moved to c's target first) and sums the reward
// value of cells uniquely closest to this player versus uniquely
// closest to anyone else.
func reachableTerritory(space *resolv.Space, snap *state.Snapshot, my int, c candidate) (mine, opponents float64) {
	heads := make([][2]int, len(snap.Players))
	for i, p := range snap.Players {
		heads[i] = [2]int{p.X, p.Y}
	}
	heads[my] = [2]int{c.tx, c.ty}

	dist := make(map[[2]int]int)
	owner := make(map[[2]int]int)
	const contested = -2

	type queued struct {
		x, y, p int
	}
	var queue []queued
	for p, h := range heads {
		if snap.Players[p].Blocked {
			continue
		}
		dist[h] = 0
		owner[h] = p
		queue = append(queue, queued{h[0], h[1], p})
	}

	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]
		d := dist[[2]int{cur.x, cur.y}]
		for _, dir := range state.AllDirections {
			nx, ny, ok := snap.TargetCell(cur.x, cur.y, dir)
			if !ok || !isOpen(space, nx, ny) {
				continue
			}
			key := [2]int{nx, ny}
			nd := d + 1
			existing, seen := dist[key]
			switch {
			case !seen || nd < existing:
				dist[key] = nd
				owner[key] = cur.p
				queue = append(queue, queued{nx, ny, cur.p})
			case nd == existing && owner[key] != cur.p:
				owner[key] = contested
			}
		}
	}

	for key, o := range owner {
		if o == contested {
			continue
		}
		v := float64(snap.At(key[0], key[1]))
		if v <= 0 {
			continue
		}
		if o == my {
			mine += v
		} else {
			opponents += v
		}
	}
	return mine, opponents
}
