package policy

import (
	"math/rand"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// Wanderer picks a direction without ever consulting the board: it is
// the naive baseline that walks blindly into whatever lies ahead,
// producing its fair share of invalid moves along the way. It never
// reports "no move" — there is always a direction to try, valid or not.
var Wanderer Policy = Func(wandererSelect)

func wandererSelect(snap *state.Snapshot, my int, rng *rand.Rand) (state.Direction, bool) {
	return state.AllDirections[rng.Intn(len(state.AllDirections))], true
}
