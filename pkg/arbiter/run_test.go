package arbiter

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joacoabraldes/chompchamps/pkg/state"
)

// TestRunReachesGameOverAndReapsWithoutHanging covers a game that ends
// before any player sends a byte: a 1x1 board has no legal move for
// anyone the instant it starts, so terminationReached fires on the
// scheduler's very first tick, before this player's pipe ever delivers
// a byte. Run must still reach game_over and reap the child promptly.
// The stand-in child is `true`, which exits on its own rather than
// waiting on its turn token.
func TestRunReachesGameOverAndReapsWithoutHanging(t *testing.T) {
	a := newTestArbiter(t, 1, 1, 1)
	a.block.SetCell(0, 0, state.OwnerCell(0))
	a.block.Player(0).X, a.block.Player(0).Y = 0, 0

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())

	a.players = []*playerProc{{name: "Player1", path: "true", read: r, cmd: cmd}}

	resultCh := make(chan *Result, 1)
	go func() {
		result, err := a.Run(context.Background())
		require.NoError(t, err)
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		require.Len(t, result.Players, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not reach game_over and reap promptly on a board with no legal move")
	}
}
