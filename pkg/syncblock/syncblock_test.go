package syncblock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joacoabraldes/chompchamps/pkg/shm"
)

func newTestSyncBlock(t *testing.T) *SyncBlock {
	t.Helper()
	name := fmt.Sprintf("/chompchamps-test-%s", t.Name())
	region, err := shm.Create(name, Size, 0o600, false, 0)
	require.NoError(t, err)
	t.Cleanup(func() { region.Destroy() })

	sb, err := New(region)
	require.NoError(t, err)
	sb.Init()
	return sb
}

func TestReaderWriterMutualExclusion(t *testing.T) {
	sb := newTestSyncBlock(t)
	ctx := context.Background()

	var active int32
	var sawOverlap bool
	var mu sync.Mutex
	var wg sync.WaitGroup

	observe := func(n int32) {
		if n > 1 {
			mu.Lock()
			sawOverlap = true
			mu.Unlock()
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			require.NoError(t, sb.EnterWriter(ctx))
			observe(atomic.AddInt32(&active, 1))
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			require.NoError(t, sb.ExitWriter())
		}
	}()

	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				require.NoError(t, sb.EnterReader(ctx))
				observe(atomic.LoadInt32(&active) + 1)
				time.Sleep(time.Microsecond)
				require.NoError(t, sb.ExitReader(ctx))
			}
		}()
	}

	wg.Wait()
	require.False(t, sawOverlap, "a reader must never hold the state while the writer does")
}

func TestConcurrentReadersAllowed(t *testing.T) {
	sb := newTestSyncBlock(t)
	ctx := context.Background()

	require.NoError(t, sb.EnterReader(ctx))
	require.NoError(t, sb.EnterReader(ctx))
	require.Equal(t, int32(2), atomic.LoadInt32(sb.readerCount))
	require.NoError(t, sb.ExitReader(ctx))
	require.NoError(t, sb.ExitReader(ctx))
	require.Equal(t, int32(0), atomic.LoadInt32(sb.readerCount))
}

func TestWriterIntentBlocksNewReaders(t *testing.T) {
	sb := newTestSyncBlock(t)
	ctx := context.Background()

	require.NoError(t, sb.EnterWriter(ctx))

	readerEntered := make(chan struct{})
	go func() {
		require.NoError(t, sb.EnterReader(ctx))
		close(readerEntered)
	}()

	select {
	case <-readerEntered:
		t.Fatal("reader entered while a writer held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, sb.ExitWriter())

	select {
	case <-readerEntered:
	case <-time.After(time.Second):
		t.Fatal("reader never entered after writer released the lock")
	}
	require.NoError(t, sb.ExitReader(ctx))
}

func TestTurnTokenGrantsExactlyOneMove(t *testing.T) {
	sb := newTestSyncBlock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, sb.SignalTurn(0))
	require.NoError(t, sb.WaitTurn(context.Background(), 0))

	err := sb.WaitTurn(ctx, 0)
	require.Error(t, err, "a player must not be able to move again without a fresh SignalTurn")
}

func TestViewHandshake(t *testing.T) {
	sb := newTestSyncBlock(t)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		require.NoError(t, sb.WaitForMaster(ctx))
		require.NoError(t, sb.AckMaster())
		close(done)
	}()

	require.NoError(t, sb.SignalView())
	require.NoError(t, sb.WaitViewAck(ctx))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("viewer goroutine never completed its side of the handshake")
	}
}
