package state

// PlayerView is a plain-value copy of one player's record, safe to read
// without holding any lock.
type PlayerView struct {
	Name         string
	Score        uint32
	ValidMoves   uint32
	InvalidMoves uint32
	X            int
	Y            int
	PID          int32
	Blocked      bool
}

// Snapshot is a deep, point-in-time copy of the board and every player's
// record, taken while holding the readers' protocol and safe to consult
// afterwards without any further synchronization. Policies, the viewer's
// renderer, and the recorder all operate on a Snapshot rather than
// reaching back into shared memory.
type Snapshot struct {
	Width   int
	Height  int
	Board   []Cell
	Players []PlayerView
}

// Snapshot copies the board and player records out of the Block. The
// caller must hold the readers' protocol (SyncBlock.EnterReader) for the
// duration of this call.
func (b *Block) Snapshot() Snapshot {
	w, h := b.Width(), b.Height()
	board := make([]Cell, w*h)
	for i := range board {
		board[i] = Cell(b.board[i])
	}
	n := b.PlayerCount()
	players := make([]PlayerView, n)
	for i := 0; i < n; i++ {
		p := b.Player(i)
		players[i] = PlayerView{
			Name:         p.Name(),
			Score:        p.Score,
			ValidMoves:   p.ValidMoves,
			InvalidMoves: p.InvalidMoves,
			X:            int(p.X),
			Y:            int(p.Y),
			PID:          p.PID(),
			Blocked:      p.Blocked(),
		}
	}
	return Snapshot{Width: w, Height: h, Board: board, Players: players}
}

// At returns the cell at (x, y).
func (s *Snapshot) At(x, y int) Cell { return s.Board[y*s.Width+x] }

// InBounds reports whether (x, y) is a valid board coordinate.
func (s *Snapshot) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}

// TargetCell returns the coordinate one step from (x, y) in direction d,
// and whether that coordinate lies on the board.
func (s *Snapshot) TargetCell(x, y int, d Direction) (tx, ty int, ok bool) {
	dx, dy := d.Delta()
	tx, ty = x+dx, y+dy
	return tx, ty, s.InBounds(tx, ty)
}
