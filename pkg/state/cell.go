package state

// Cell is one board slot: a positive value is an unclaimed reward of
// that magnitude, a non-positive value is claimed and identifies its
// owner as -(value)-1. There are no back-pointers from cell to owner;
// identity is derived from the arithmetic, not stored redundantly.
type Cell int32

// IsReward reports whether the cell still holds an unclaimed reward.
func (c Cell) IsReward() bool { return c > 0 }

// Owner returns the owning player's index and true if the cell is
// claimed. If the cell is still an unclaimed reward, claimed is false.
func (c Cell) Owner() (index int, claimed bool) {
	if c > 0 {
		return 0, false
	}
	return int(-c) - 1, true
}

// OwnerCell encodes ownership by player index into the Cell value that
// claims it.
func OwnerCell(index int) Cell { return Cell(-(int32(index) + 1)) }
