package state

import "sync/atomic"

// MaxPlayers is the maximum number of concurrent players the arena
// supports.
const MaxPlayers = 9

// MaxNameLen is the maximum length, in bytes, of a player's display name.
const MaxNameLen = 15

// PlayerRecord is the fixed-size, shared-memory layout of one player's
// state. Score, ValidMoves, InvalidMoves, X and Y are read and written
// only while the caller holds the readers' or writer's protocol, so they
// are plain fields, the same way code protected by a sync.Mutex uses
// plain fields: the lock's own synchronization gives them a
// happens-before edge. pid and blocked are accessed outside the
// protocol (the Arbiter stamps pid and latches blocked without taking
// the writer lock, and its termination checks read blocked the same
// way), so those go through atomics to make that intentional race
// well-defined.
type PlayerRecord struct {
	name         [MaxNameLen + 1]byte
	Score        uint32
	ValidMoves   uint32
	InvalidMoves uint32
	X            uint16
	Y            uint16
	pid          int32
	blocked      uint32
}

// Name returns the player's display name.
func (p *PlayerRecord) Name() string {
	n := 0
	for n < len(p.name) && p.name[n] != 0 {
		n++
	}
	return string(p.name[:n])
}

// SetName truncates name to MaxNameLen bytes and stores it.
func (p *PlayerRecord) SetName(name string) {
	p.name = [MaxNameLen + 1]byte{}
	copy(p.name[:MaxNameLen], name)
}

// PID returns the player process's PID, or 0 before the Arbiter has
// recorded it.
func (p *PlayerRecord) PID() int32 { return atomic.LoadInt32(&p.pid) }

// SetPID records the player process's PID. Only the Arbiter calls this,
// once, right after forking the child and before the child can plausibly
// have scanned for it.
func (p *PlayerRecord) SetPID(pid int32) { atomic.StoreInt32(&p.pid, pid) }

// Blocked reports whether the player has given up its remaining turns.
// The Arbiter sets it when the player's pipe closes.
func (p *PlayerRecord) Blocked() bool { return atomic.LoadUint32(&p.blocked) != 0 }

// SetBlocked latches the blocked flag.
func (p *PlayerRecord) SetBlocked(b bool) {
	v := uint32(0)
	if b {
		v = 1
	}
	atomic.StoreUint32(&p.blocked, v)
}
