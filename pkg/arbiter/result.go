package arbiter

import (
	"context"
	"fmt"

	"github.com/joacoabraldes/chompchamps/pkg/log"
)

// PlayerSummary is one player's final line: how its process exited and
// how it scored.
type PlayerSummary struct {
	Name         string
	Score        uint32
	ValidMoves   uint32
	InvalidMoves uint32
	ExitCode     int
	Signal       int
	Signaled     bool
}

// Result is the outcome of one completed run.
type Result struct {
	Players []PlayerSummary
	Winner  int // -1 means a tie
}

// reapAndSummarize waits for every player process to exit, builds the
// per-player summary, and computes the winner with the lexicographic
// tiebreak: max score, then min valid moves, then min invalid moves.
func (a *Arbiter) reapAndSummarize(ctx context.Context) *Result {
	if err := a.sync.EnterReader(ctx); err != nil {
		log.Warn("reader entry for summary: %v", err)
	}
	snap := a.block.Snapshot()
	a.sync.ExitReader(ctx)

	summaries := make([]PlayerSummary, len(a.players))
	for i, proc := range a.players {
		exitCode, signal, signaled := waitChild(proc.cmd)
		summaries[i] = PlayerSummary{
			Name:         snap.Players[i].Name,
			Score:        snap.Players[i].Score,
			ValidMoves:   snap.Players[i].ValidMoves,
			InvalidMoves: snap.Players[i].InvalidMoves,
			ExitCode:     exitCode,
			Signal:       signal,
			Signaled:     signaled,
		}
		if summaries[i].Signaled {
			log.Info("player %s: signal %d, score %d", summaries[i].Name, summaries[i].Signal, summaries[i].Score)
		} else {
			log.Info("player %s: exit code %d, score %d", summaries[i].Name, summaries[i].ExitCode, summaries[i].Score)
		}
	}

	if a.viewer != nil {
		a.viewer.Wait()
	}

	return &Result{Players: summaries, Winner: winnerIndex(summaries)}
}

// winnerIndex applies the tiebreak: maximum score, then minimum valid
// moves, then minimum invalid moves. Returns -1 if that leaves more
// than one player tied.
func winnerIndex(summaries []PlayerSummary) int {
	winner := -1
	var maxScore, minValid, minInvalid uint32
	tied := false
	for i, s := range summaries {
		switch {
		case winner == -1 || s.Score > maxScore:
			winner, maxScore, minValid, minInvalid, tied = i, s.Score, s.ValidMoves, s.InvalidMoves, false
		case s.Score == maxScore:
			switch {
			case s.ValidMoves < minValid:
				winner, minValid, minInvalid, tied = i, s.ValidMoves, s.InvalidMoves, false
			case s.ValidMoves == minValid:
				switch {
				case s.InvalidMoves < minInvalid:
					winner, minInvalid, tied = i, s.InvalidMoves, false
				case s.InvalidMoves == minInvalid:
					tied = true
				}
			}
		}
	}
	if tied {
		return -1
	}
	return winner
}

// Summary renders the human-readable per-player and winner lines the
// spec's external interface requires on stdout.
func Summary(r *Result) string {
	out := ""
	for _, p := range r.Players {
		if p.Signaled {
			out += fmt.Sprintf("Player %s: signal %d, score %d\n", p.Name, p.Signal, p.Score)
		} else {
			out += fmt.Sprintf("Player %s: exit code %d, score %d\n", p.Name, p.ExitCode, p.Score)
		}
	}
	if r.Winner == -1 {
		out += "Tie\n"
	} else {
		out += fmt.Sprintf("Winner: %s with %d points\n", r.Players[r.Winner].Name, r.Players[r.Winner].Score)
	}
	return out
}
