// Package syncblock implements the writer-preference reader/writer
// protocol, the per-player turn tokens, and the master<->view handshake
// that together let one Arbiter process, up to nine player processes,
// and one viewer process share a StateBlock safely.
package syncblock

import (
	"context"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
	"github.com/joacoabraldes/chompchamps/pkg/sema"
	"github.com/joacoabraldes/chompchamps/pkg/shm"
)

// MaxPlayers is the maximum number of concurrent players the arena
// supports.
const MaxPlayers = 9

const (
	offMasterToView    = 0
	offViewToMaster    = offMasterToView + sema.Size
	offWriterIntent    = offViewToMaster + sema.Size
	offStateLock       = offWriterIntent + sema.Size
	offReaderCountLock = offStateLock + sema.Size
	offReaderCount     = offReaderCountLock + sema.Size
	offTurnToken       = offReaderCount + 4
	// Size is the number of bytes a SyncBlock occupies in shared memory.
	Size = offTurnToken + MaxPlayers*sema.Size
)

// SyncBlock is a typed view over a shared memory region laid out as the
// spec's SyncBlock.
type SyncBlock struct {
	region *shm.Region

	masterToView    *sema.Sema
	viewToMaster    *sema.Sema
	writerIntent    *sema.Sema
	stateLock       *sema.Sema
	readerCountLock *sema.Sema
	readerCount     *int32
	turnToken       [MaxPlayers]*sema.Sema
}

// New overlays a SyncBlock on region, which must be at least Size bytes.
func New(region *shm.Region) (*SyncBlock, error) {
	data := region.Data()
	if len(data) < Size {
		return nil, ipcerr.New(ipcerr.InvalidArgument, "syncblock.New",
			fmt.Errorf("region too small: have %d, need %d", len(data), Size))
	}
	sb := &SyncBlock{
		region:          region,
		masterToView:    sema.At(data[offMasterToView:]),
		viewToMaster:    sema.At(data[offViewToMaster:]),
		writerIntent:    sema.At(data[offWriterIntent:]),
		stateLock:       sema.At(data[offStateLock:]),
		readerCountLock: sema.At(data[offReaderCountLock:]),
		readerCount:     (*int32)(unsafe.Pointer(&data[offReaderCount])),
	}
	for i := 0; i < MaxPlayers; i++ {
		sb.turnToken[i] = sema.At(data[offTurnToken+i*sema.Size:])
	}
	return sb, nil
}

// Init sets every semaphore to its starting value. Only the Arbiter
// calls this, once, before spawning any child process.
func (s *SyncBlock) Init() {
	data := s.region.Data()
	sema.InitAt(data[offMasterToView:], 0)
	sema.InitAt(data[offViewToMaster:], 0)
	sema.InitAt(data[offWriterIntent:], 1) // mutex, unlocked
	sema.InitAt(data[offStateLock:], 1)    // mutex, unlocked
	sema.InitAt(data[offReaderCountLock:], 1)
	atomic.StoreInt32(s.readerCount, 0)
	for i := 0; i < MaxPlayers; i++ {
		sema.InitAt(data[offTurnToken+i*sema.Size:], 0)
	}
}

// EnterReader executes the reader entry protocol: pass through
// writer_intent as a barrier so a pending writer is never overtaken,
// then join the reader cohort, becoming the one that holds state_lock on
// the cohort's behalf if it is the first reader in.
func (s *SyncBlock) EnterReader(ctx context.Context) error {
	if err := s.writerIntent.Wait(ctx); err != nil {
		return err
	}
	if err := s.writerIntent.Post(); err != nil {
		return err
	}
	if err := s.readerCountLock.Wait(ctx); err != nil {
		return err
	}
	if atomic.AddInt32(s.readerCount, 1) == 1 {
		if err := s.stateLock.Wait(ctx); err != nil {
			atomic.AddInt32(s.readerCount, -1)
			s.readerCountLock.Post()
			return err
		}
	}
	return s.readerCountLock.Post()
}

// ExitReader leaves the reader cohort, releasing state_lock on its
// behalf if this was the last reader.
func (s *SyncBlock) ExitReader(ctx context.Context) error {
	if err := s.readerCountLock.Wait(ctx); err != nil {
		return err
	}
	if atomic.AddInt32(s.readerCount, -1) == 0 {
		if err := s.stateLock.Post(); err != nil {
			s.readerCountLock.Post()
			return err
		}
	}
	return s.readerCountLock.Post()
}

// EnterWriter acquires exclusive access to the StateBlock. Only the
// Arbiter calls this: holding writer_intent for the duration of the
// mutation is what makes newly arriving readers queue behind the
// writer instead of starving it.
func (s *SyncBlock) EnterWriter(ctx context.Context) error {
	if err := s.writerIntent.Wait(ctx); err != nil {
		return err
	}
	if err := s.stateLock.Wait(ctx); err != nil {
		s.writerIntent.Post()
		return err
	}
	return nil
}

// ExitWriter releases the writer lock and the writer-intent barrier, in
// that order.
func (s *SyncBlock) ExitWriter() error {
	if err := s.stateLock.Post(); err != nil {
		return err
	}
	return s.writerIntent.Post()
}

// SignalTurn authorises player i to emit exactly one more move.
func (s *SyncBlock) SignalTurn(i int) error { return s.turnToken[i].Post() }

// WaitTurn blocks player i until the Arbiter authorises its next move.
func (s *SyncBlock) WaitTurn(ctx context.Context, i int) error {
	return s.turnToken[i].Wait(ctx)
}

// SignalView wakes a viewer waiting to redraw.
func (s *SyncBlock) SignalView() error { return s.masterToView.Post() }

// WaitViewAck blocks the Arbiter until the viewer acknowledges a
// redraw. Callers doing the final post-game-over handshake should pass
// a ctx with a deadline, since a viewer that already exited will never
// post back.
func (s *SyncBlock) WaitViewAck(ctx context.Context) error { return s.viewToMaster.Wait(ctx) }

// WaitForMaster blocks the viewer until the Arbiter signals a redraw.
func (s *SyncBlock) WaitForMaster(ctx context.Context) error { return s.masterToView.Wait(ctx) }

// AckMaster tells the Arbiter the viewer finished its redraw.
func (s *SyncBlock) AckMaster() error { return s.viewToMaster.Post() }
