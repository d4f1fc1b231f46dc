package arbiter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joacoabraldes/chompchamps/pkg/shm"
	"github.com/joacoabraldes/chompchamps/pkg/state"
)

func newTestBlock(t *testing.T, width, height, playerCount int) *state.Block {
	t.Helper()
	name := fmt.Sprintf("/chompchamps-test-%s", t.Name())
	region, err := shm.Create(name, state.Size(width, height), 0o600, false, 0)
	require.NoError(t, err)
	t.Cleanup(func() { region.Destroy() })

	block, err := state.New(region, width, height)
	require.NoError(t, err)
	block.Init(width, height, playerCount)
	return block
}

func TestSeedBoardFillsEveryCellWithAReward(t *testing.T) {
	block := newTestBlock(t, 5, 5, 1)
	rng := rand.New(rand.NewSource(1))
	seedBoard(block, 5, 5, rng)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			v := block.Cell(x, y)
			require.True(t, v.IsReward())
			require.GreaterOrEqual(t, int(v), 1)
			require.LessOrEqual(t, int(v), 9)
		}
	}
}

func TestPlacePlayersClaimsDistinctStartCells(t *testing.T) {
	block := newTestBlock(t, 6, 6, 4)
	placePlayers(block, 6, 6, 4)

	seen := map[[2]int]bool{}
	for i := 0; i < 4; i++ {
		p := block.Player(i)
		key := [2]int{int(p.X), int(p.Y)}
		require.False(t, seen[key], "player start positions must be distinct on a board this size")
		seen[key] = true

		owner, claimed := block.Cell(int(p.X), int(p.Y)).Owner()
		require.True(t, claimed)
		require.Equal(t, i, owner)
	}
}

func TestHasLegalMoveDetectsAdjacentReward(t *testing.T) {
	block := newTestBlock(t, 3, 3, 1)
	block.Player(0).X, block.Player(0).Y = 1, 1
	require.False(t, hasLegalMove(block, 0))

	block.SetCell(2, 1, state.Cell(5))
	require.True(t, hasLegalMove(block, 0))
}

func TestAnyPlayerHasLegalMoveSkipsBlockedPlayers(t *testing.T) {
	block := newTestBlock(t, 3, 3, 2)
	block.Player(0).X, block.Player(0).Y = 0, 0
	block.Player(1).X, block.Player(1).Y = 2, 2
	require.False(t, anyPlayerHasLegalMove(block, 2))

	block.SetCell(1, 2, state.Cell(3))
	require.True(t, anyPlayerHasLegalMove(block, 2))

	block.Player(1).SetBlocked(true)
	require.False(t, anyPlayerHasLegalMove(block, 2), "a blocked player's legal move must not count")
}

func TestAllBlocked(t *testing.T) {
	block := newTestBlock(t, 2, 2, 2)
	require.False(t, allBlocked(block, 2))
	block.Player(0).SetBlocked(true)
	require.False(t, allBlocked(block, 2))
	block.Player(1).SetBlocked(true)
	require.True(t, allBlocked(block, 2))
}
