package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joacoabraldes/chompchamps/pkg/shm"
)

func newTestBlock(t *testing.T, width, height, playerCount int) *Block {
	t.Helper()
	name := fmt.Sprintf("/chompchamps-test-%s", t.Name())
	region, err := shm.Create(name, Size(width, height), 0o600, false, 0)
	require.NoError(t, err)
	t.Cleanup(func() { region.Destroy() })

	block, err := New(region, width, height)
	require.NoError(t, err)
	block.Init(width, height, playerCount)
	return block
}

func TestBlockCellRoundTrip(t *testing.T) {
	block := newTestBlock(t, 4, 3, 1)
	require.Equal(t, 4, block.Width())
	require.Equal(t, 3, block.Height())

	block.SetCell(2, 1, Cell(7))
	require.Equal(t, Cell(7), block.Cell(2, 1))
	require.True(t, block.InBounds(3, 2))
	require.False(t, block.InBounds(4, 0))
	require.False(t, block.InBounds(-1, 0))
}

func TestBlockPlayerRecordLivesInSharedMemory(t *testing.T) {
	block := newTestBlock(t, 2, 2, 2)
	p0 := block.Player(0)
	p0.SetName("Player1")
	p0.Score = 5
	p0.SetPID(1234)

	// A second view over the same region must observe the writes.
	again := block.Player(0)
	require.Equal(t, "Player1", again.Name())
	require.Equal(t, uint32(5), again.Score)
	require.Equal(t, int32(1234), again.PID())
}

func TestBlockGameOverIsMonotonic(t *testing.T) {
	block := newTestBlock(t, 1, 1, 1)
	require.False(t, block.GameOver())
	block.SetGameOver()
	require.True(t, block.GameOver())
}

func TestBlockSnapshotIsIndependentCopy(t *testing.T) {
	block := newTestBlock(t, 2, 1, 1)
	block.SetCell(0, 0, Cell(3))
	block.Player(0).SetName("Solo")
	block.Player(0).Score = 1

	snap := block.Snapshot()
	block.SetCell(0, 0, Cell(9))
	block.Player(0).Score = 100

	require.Equal(t, Cell(3), snap.At(0, 0))
	require.Equal(t, uint32(1), snap.Players[0].Score)
}
