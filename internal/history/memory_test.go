package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaad-chat/internal/models"
)

func userMsg(i int) models.TranscriptMessage {
	return models.TranscriptMessage{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)}
}

func TestMemoryStore_FIFOWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultMaxMessages, 0)

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Append(ctx, "s1", userMsg(i)))
	}

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, DefaultMaxMessages)
	assert.Equal(t, "m5", got[0].Content)
	assert.Equal(t, "m24", got[len(got)-1].Content)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(4, 0)

	require.NoError(t, store.Append(ctx, "a", userMsg(1), userMsg(2)))
	require.NoError(t, store.Append(ctx, "b", userMsg(3)))

	a, _ := store.Get(ctx, "a")
	b, _ := store.Get(ctx, "b")
	missing, _ := store.Get(ctx, "c")

	assert.Len(t, a, 2)
	assert.Len(t, b, 1)
	assert.Empty(t, missing)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(4, 0)
	require.NoError(t, store.Append(ctx, "a", userMsg(1)))

	got, _ := store.Get(ctx, "a")
	got[0].Content = "mutated"

	again, _ := store.Get(ctx, "a")
	assert.Equal(t, "m1", again[0].Content)
}

func TestMemoryStore_Evict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(4, 0)
	require.NoError(t, store.Append(ctx, "a", userMsg(1)))

	require.NoError(t, store.Evict(ctx, "a"))

	got, _ := store.Get(ctx, "a")
	assert.Empty(t, got)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(4, time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Append(ctx, "a", userMsg(1)))
	require.NoError(t, store.Append(ctx, "b", userMsg(2)))

	now = now.Add(30 * time.Second)
	require.NoError(t, store.Append(ctx, "b", userMsg(3)))

	now = now.Add(45 * time.Second)
	a, _ := store.Get(ctx, "a")
	b, _ := store.Get(ctx, "b")
	assert.Empty(t, a)
	assert.Len(t, b, 2)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultMaxMessages, 0)

	var wg sync.WaitGroup
	for s := 0; s < 8; s++ {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.Append(ctx, session, userMsg(i))
				_, _ = store.Get(ctx, session)
			}
		}(fmt.Sprintf("s%d", s))
	}
	wg.Wait()

	for s := 0; s < 8; s++ {
		got, _ := store.Get(ctx, fmt.Sprintf("s%d", s))
		assert.Len(t, got, DefaultMaxMessages)
		assert.Equal(t, "m49", got[len(got)-1].Content)
	}
}

func TestMemoryStore_RunSweeperStops(t *testing.T) {
	store := NewMemoryStore(4, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.RunSweeper(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
