package sema

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostWaitRoundTrip(t *testing.T) {
	mem := make([]byte, Size)
	InitAt(mem, 0)
	s := At(mem)

	require.NoError(t, s.Post())
	require.Equal(t, int32(1), s.Value())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	require.Equal(t, int32(0), s.Value())
}

func TestTryWait(t *testing.T) {
	mem := make([]byte, Size)
	InitAt(mem, 1)
	s := At(mem)

	assert.True(t, s.TryWait())
	assert.False(t, s.TryWait(), "second TryWait on an exhausted semaphore must not block or succeed")
}

func TestWaitBlocksUntilPost(t *testing.T) {
	mem := make([]byte, Size)
	InitAt(mem, 0)
	s := At(mem)

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, s.Wait(context.Background()))
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Post")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.Post())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake up after Post")
	}
}

func TestWaitRespectsCancellation(t *testing.T) {
	mem := make([]byte, Size)
	InitAt(mem, 0)
	s := At(mem)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Wait(ctx)
	require.Error(t, err)
}

func TestConcurrentProducerConsumer(t *testing.T) {
	mem := make([]byte, Size)
	InitAt(mem, 0)
	s := At(mem)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2)

	received := 0
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			require.NoError(t, s.Wait(context.Background()))
			received++
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			require.NoError(t, s.Post())
		}
	}()

	wg.Wait()
	assert.Equal(t, n, received)
}
