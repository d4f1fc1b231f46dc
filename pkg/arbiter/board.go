package arbiter

import (
	"math/rand"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// seedBoard fills every cell with a reward drawn uniformly from 1..9.
func seedBoard(block *state.Block, width, height int, rng *rand.Rand) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			block.SetCell(x, y, state.Cell(rng.Intn(9)+1))
		}
	}
}

// startPositions is the deterministic corners/mid-edges/centre table
// players are placed at, in order, indexed [y][x] the way the original
// placement table lists row then column.
func startPositions(width, height int) [state.MaxPlayers][2]int {
	return [state.MaxPlayers][2]int{
		{0, 0},
		{0, width - 1},
		{height - 1, 0},
		{height - 1, width - 1},
		{height / 2, width / 2},
		{0, width / 2},
		{height - 1, width / 2},
		{height / 2, 0},
		{height / 2, width - 1},
	}
}

// placePlayers seeds each player's head at its deterministic start
// position and claims that cell on the board.
func placePlayers(block *state.Block, width, height, count int) {
	positions := startPositions(width, height)
	for i := 0; i < count; i++ {
		y, x := positions[i][0], positions[i][1]
		p := block.Player(i)
		p.X = uint16(x)
		p.Y = uint16(y)
		block.SetCell(x, y, state.OwnerCell(i))
	}
}
