package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellIsReward(t *testing.T) {
	assert.True(t, Cell(1).IsReward())
	assert.True(t, Cell(9).IsReward())
	assert.False(t, Cell(0).IsReward())
	assert.False(t, Cell(-1).IsReward())
}

func TestCellOwnerRoundTrip(t *testing.T) {
	for i := 0; i < MaxPlayers; i++ {
		c := OwnerCell(i)
		idx, claimed := c.Owner()
		assert.True(t, claimed)
		assert.Equal(t, i, idx)
	}
}

func TestCellOwnerOfReward(t *testing.T) {
	_, claimed := Cell(5).Owner()
	assert.False(t, claimed)
}
