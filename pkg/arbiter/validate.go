package arbiter

import "github.com/joacoabraldes/chompchamps/pkg/state"

// targetCell returns the coordinate one step from (x, y) in direction
// d, and whether it lands on the board.
func targetCell(block *state.Block, x, y int, d state.Direction) (tx, ty int, ok bool) {
	dx, dy := d.Delta()
	tx, ty = x+dx, y+dy
	return tx, ty, block.InBounds(tx, ty)
}

// hasLegalMove reports whether player i has any in-bounds direction
// whose target cell still holds a reward. Callers must hold either the
// writer lock or the readers' protocol.
func hasLegalMove(block *state.Block, i int) bool {
	p := block.Player(i)
	x, y := int(p.X), int(p.Y)
	for _, d := range state.AllDirections {
		tx, ty, ok := targetCell(block, x, y, d)
		if ok && block.Cell(tx, ty).IsReward() {
			return true
		}
	}
	return false
}

// anyPlayerHasLegalMove reports whether any non-blocked player among
// the first n has a legal move.
func anyPlayerHasLegalMove(block *state.Block, n int) bool {
	for i := 0; i < n; i++ {
		if block.Player(i).Blocked() {
			continue
		}
		if hasLegalMove(block, i) {
			return true
		}
	}
	return false
}

// allBlocked reports whether every one of the first n players is
// blocked.
func allBlocked(block *state.Block, n int) bool {
	for i := 0; i < n; i++ {
		if !block.Player(i).Blocked() {
			return false
		}
	}
	return true
}
