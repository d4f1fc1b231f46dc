package policy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// board builds a Snapshot from a row-major slice of ints, one per cell,
// mirroring the sign convention: >0 unclaimed reward, <=0 claimed.
func board(width, height int, cells []int, players []state.PlayerView) *state.Snapshot {
	b := make([]state.Cell, len(cells))
	for i, v := range cells {
		b[i] = state.Cell(v)
	}
	return &state.Snapshot{Width: width, Height: height, Board: b, Players: players}
}

func TestWandererAlwaysReturnsAMove(t *testing.T) {
	snap := board(3, 3, []int{
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
	}, []state.PlayerView{{X: 1, Y: 1}})
	rng := rand.New(rand.NewSource(1))

	dir, ok := Wanderer.Select(snap, 0, rng)
	assert.True(t, ok)
	assert.True(t, dir.Valid())
}

func TestGreedyReturnsFalseWithNoLegalMove(t *testing.T) {
	snap := board(2, 2, []int{
		0, 0,
		0, 0,
	}, []state.PlayerView{{X: 0, Y: 0}})

	_, ok := Greedy.Select(snap, 0, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

func TestGreedyPrefersHighestValueCandidate(t *testing.T) {
	// Player at (1,1) in the centre of a 3x3 board with no opponents and
	// two rewards: 2 up-left and 9 straight down. Greedy must take the 9.
	snap := board(3, 3, []int{
		2, 0, 0,
		0, 0, 0,
		0, 9, 0,
	}, []state.PlayerView{{X: 1, Y: 1}})

	dir, ok := Greedy.Select(snap, 0, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, state.Down, dir)
}

func TestGreedyAvoidsCellsAdjacentToOpponentWhenAlternativeExists(t *testing.T) {
	// Player 0 at (1,1); reward of 5 to the right sits next to opponent
	// at (2,0), reward of 3 to the left has no opponent nearby.
	snap := board(3, 3, []int{
		0, 0, 0,
		3, 0, 5,
		0, 0, 0,
	}, []state.PlayerView{
		{X: 1, Y: 1},
		{X: 2, Y: 0},
	})

	dir, ok := Greedy.Select(snap, 0, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, state.Left, dir, "greedy should prefer the reward not adjacent to an opponent's head")
}

func TestGreedyFallsBackToFullSetWhenEveryMoveIsNearAnOpponent(t *testing.T) {
	// The only legal move for player 0 leads next to player 1's head;
	// Greedy must still take it rather than report no move.
	snap := board(3, 1, []int{
		0, 0, 4,
	}, []state.PlayerView{
		{X: 1, Y: 0},
		{X: 2, Y: 0},
	})

	dir, ok := Greedy.Select(snap, 0, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, state.Right, dir)
}

func TestTrapperReturnsFalseWithNoLegalMove(t *testing.T) {
	snap := board(1, 1, []int{0}, []state.PlayerView{{X: 0, Y: 0}})
	tr := NewTrapper()
	_, ok := tr.Select(snap, 0, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

func TestTrapperPicksTheOnlyLegalMoveOnAStrip(t *testing.T) {
	snap := board(5, 1, []int{
		0, 2, 0, 0, 9,
	}, []state.PlayerView{
		{X: 0, Y: 0},
		{X: 3, Y: 0},
	})

	tr := NewTrapper()
	dir, ok := tr.Select(snap, 0, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, state.Right, dir, "only one legal move exists from (0,0) on this strip")
}

func TestTrapperWeighsTerritoryAgainstImmediateReward(t *testing.T) {
	// Player 0 sits between two rewards of equal immediate value: the
	// one on the left continues into a chain of further rewards, the
	// one on the right dead-ends against zero cells, which the
	// occupancy space treats as walls. Trapper should prefer the side
	// with more uniquely-reachable territory.
	snap := board(7, 1, []int{
		2, 1, 1, 0, 1, 0, 0,
	}, []state.PlayerView{{X: 3, Y: 0}})

	tr := NewTrapper()
	dir, ok := tr.Select(snap, 0, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, state.Left, dir, "moving left reaches a longer chain of rewards than moving right")
}
