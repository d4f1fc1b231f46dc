package arbiter

import (
	"context"
	"time"

	"github.com/joacoabraldes/chompchamps/pkg/log"
	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// Run drives the event-driven scheduler until one of the termination
// conditions fires, then performs the final handshake, reaps every
// child, and returns the standings.
func (a *Arbiter) Run(ctx context.Context) (*Result, error) {
	moves := make(chan moveEvent, len(a.players))
	readerCtx, cancelReaders := context.WithCancel(ctx)
	defer cancelReaders()
	for i, p := range a.players {
		go pipeReader(readerCtx, i, p.read, moves)
	}

	delay := a.cfg.delay()
	timeout := a.cfg.timeout()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev := <-moves:
			if ev.closed {
				a.handleClosed(ev.player)
			} else if err := a.handleMove(ctx, ev.player, ev.raw); err != nil {
				log.Error("processing move from player %d: %v", ev.player, err)
				break loop
			}
		case <-time.After(delay):
			// no byte arrived within the pacing window; fall through to
			// the termination checks below on the next iteration too.
		}

		if a.terminationReached(timeout) {
			break loop
		}
	}

	a.block.SetGameOver()
	// Any player still parked in WaitTurn — one that never got a chance
	// to move this round, or one whose last move raced the termination
	// check — must be woken so it can observe game_over and exit; only
	// a received byte re-arms a turn token, and no more bytes are
	// coming once the scheduler loop above has stopped reading them.
	for i := range a.players {
		if err := a.sync.SignalTurn(i); err != nil {
			log.Warn("re-arming player %d during shutdown: %v", i, err)
		}
	}
	if err := a.finalHandshake(ctx); err != nil {
		log.Warn("final view handshake: %v", err)
	}
	cancelReaders()

	return a.reapAndSummarize(ctx), nil
}

// terminationReached checks the three termination conditions, first
// match wins, in a fixed order: no legal move anywhere, idle timeout,
// all players blocked.
func (a *Arbiter) terminationReached(timeout time.Duration) bool {
	n := a.cfg.playerCount()
	if !anyPlayerHasLegalMove(a.block, n) {
		return true
	}
	if time.Since(a.lastValidMove) >= timeout {
		return true
	}
	return allBlocked(a.block, n)
}

// handleMove validates and applies one byte from player i under the
// writer lock, then paces the view and re-arms the player's turn token.
func (a *Arbiter) handleMove(ctx context.Context, i int, raw byte) error {
	if err := a.sync.EnterWriter(ctx); err != nil {
		return err
	}
	p := a.block.Player(i)
	accepted := false

	dir := state.Direction(raw)
	switch {
	case !dir.Valid():
		p.InvalidMoves++
	default:
		x, y := int(p.X), int(p.Y)
		tx, ty, ok := targetCell(a.block, x, y, dir)
		if !ok || !a.block.Cell(tx, ty).IsReward() {
			p.InvalidMoves++
			break
		}
		reward := int(a.block.Cell(tx, ty))
		p.Score += uint32(reward)
		a.block.SetCell(tx, ty, state.OwnerCell(i))
		p.X, p.Y = uint16(tx), uint16(ty)
		p.ValidMoves++
		accepted = true
		a.lastValidMove = time.Now()
	}

	scoreAfter, xAfter, yAfter := p.Score, int(p.X), int(p.Y)
	if err := a.sync.ExitWriter(); err != nil {
		return err
	}

	if a.recorder != nil {
		if err := a.recorder.Move(ctx, i, raw, accepted, scoreAfter, xAfter, yAfter); err != nil {
			log.Warn("recorder: %v", err)
		}
	}

	if err := a.notifyView(ctx); err != nil {
		return err
	}

	time.Sleep(a.cfg.delay())

	if !p.Blocked() {
		return a.sync.SignalTurn(i)
	}
	return nil
}

// handleClosed marks player i blocked after its pipe reports EOF.
func (a *Arbiter) handleClosed(i int) {
	a.block.Player(i).SetBlocked(true)
	if i < len(a.players) {
		a.players[i].closed = true
		a.players[i].read.Close()
	}
}

// notifyView performs one master->view handshake, if a viewer is
// attached. It is a no-op otherwise.
func (a *Arbiter) notifyView(ctx context.Context) error {
	if !a.cfg.hasViewer() {
		return nil
	}
	if err := a.sync.SignalView(); err != nil {
		return err
	}
	ackCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.sync.WaitViewAck(ackCtx)
}

// finalHandshake gives the viewer one last chance to render the
// game_over state before the Arbiter reaps it. The wait is bounded: a
// viewer that already exited on its own must never hang shutdown.
func (a *Arbiter) finalHandshake(ctx context.Context) error {
	if !a.cfg.hasViewer() {
		return nil
	}
	if err := a.sync.SignalView(); err != nil {
		return err
	}
	ackCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return a.sync.WaitViewAck(ackCtx)
}
