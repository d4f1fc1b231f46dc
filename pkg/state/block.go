// Package state implements the StateBlock: the board cells, the player
// records, and the game-over flag, laid out as a fixed header followed
// by a row-major board array inside a single shared memory region — the
// Go rendering of the original's `struct { header...; int board[]; }`
// flexible-array layout, computed as an unsafe.Slice over the mapping
// the way the corpus's mmapforge package computes record slices from a
// stored header size and index.
package state

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
	"github.com/joacoabraldes/chompchamps/pkg/shm"
)

type header struct {
	Width       uint32
	Height      uint32
	PlayerCount uint32
	Players     [MaxPlayers]PlayerRecord
	gameOver    uint32
}

// HeaderSize is the number of bytes occupied by the fixed StateBlock
// header, before the row-major board array.
var HeaderSize = int(unsafe.Sizeof(header{}))

// Size returns the number of bytes a StateBlock needs for a board of the
// given dimensions.
func Size(width, height int) int {
	return HeaderSize + width*height*4
}

// Block is a typed view over a shared memory region laid out as the
// StateBlock.
type Block struct {
	hdr   *header
	board []int32
}

// New overlays a Block on region, which must be at least
// Size(width, height) bytes.
func New(region *shm.Region, width, height int) (*Block, error) {
	data := region.Data()
	need := Size(width, height)
	if len(data) < need {
		return nil, ipcerr.New(ipcerr.InvalidArgument, "state.New",
			fmt.Errorf("region too small: have %d, need %d", len(data), need))
	}
	hdr := (*header)(unsafe.Pointer(&data[0]))
	boardBytes := data[HeaderSize:need]
	var board []int32
	if width*height > 0 {
		board = unsafe.Slice((*int32)(unsafe.Pointer(&boardBytes[0])), width*height)
	}
	return &Block{hdr: hdr, board: board}, nil
}

// Init sets width, height, player count and clears game-over. Only the
// Arbiter calls this, once, before seeding the board.
func (b *Block) Init(width, height, playerCount int) {
	atomic.StoreUint32(&b.hdr.Width, uint32(width))
	atomic.StoreUint32(&b.hdr.Height, uint32(height))
	atomic.StoreUint32(&b.hdr.PlayerCount, uint32(playerCount))
	atomic.StoreUint32(&b.hdr.gameOver, 0)
}

// Width returns the board width in cells.
func (b *Block) Width() int { return int(atomic.LoadUint32(&b.hdr.Width)) }

// Height returns the board height in cells.
func (b *Block) Height() int { return int(atomic.LoadUint32(&b.hdr.Height)) }

// PlayerCount returns the number of registered players.
func (b *Block) PlayerCount() int { return int(atomic.LoadUint32(&b.hdr.PlayerCount)) }

// GameOver reports whether the game has ended. Once true, per spec, no
// further mutation of the block is observable — this flag is
// intentionally read without the readers' protocol in a few places
// (e.g. a player's per-turn loop condition), so it is stored atomically.
func (b *Block) GameOver() bool { return atomic.LoadUint32(&b.hdr.gameOver) != 0 }

// SetGameOver latches the game-over flag. Monotonic: callers never clear it.
func (b *Block) SetGameOver() { atomic.StoreUint32(&b.hdr.gameOver, 1) }

// InBounds reports whether (x, y) is a valid board coordinate.
func (b *Block) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

// Cell returns the value at (x, y).
func (b *Block) Cell(x, y int) Cell {
	return Cell(atomic.LoadInt32(&b.board[y*b.Width()+x]))
}

// SetCell sets the value at (x, y). Only the Arbiter calls this, while
// holding the writer lock.
func (b *Block) SetCell(x, y int, v Cell) {
	atomic.StoreInt32(&b.board[y*b.Width()+x], int32(v))
}

// Player returns a pointer to player i's record, live inside shared
// memory: writes through it are immediately visible to every mapper of
// the region.
func (b *Block) Player(i int) *PlayerRecord { return &b.hdr.Players[i] }
