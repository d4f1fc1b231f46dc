package arbiter

import (
	"context"
	"io"
)

// moveEvent is one byte read off a player's pipe, or a notice that the
// pipe closed.
type moveEvent struct {
	player int
	raw    byte
	closed bool
}

// pipeReader is the goroutine-per-pipe half of the event-driven
// scheduler: rather than multiplexing raw file descriptors the way a
// single-threaded select(2) loop would, each player's pipe gets its own
// goroutine blocked in Read, forwarding whatever it sees onto a shared
// channel the scheduler selects against. A player only ever has one
// byte in flight because the Arbiter withholds its next turn token
// until this goroutine's previous byte has been processed.
func pipeReader(ctx context.Context, idx int, r io.Reader, out chan<- moveEvent) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			select {
			case out <- moveEvent{player: idx, raw: buf[0]}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case out <- moveEvent{player: idx, closed: true}:
			case <-ctx.Done():
			}
			return
		}
	}
}
