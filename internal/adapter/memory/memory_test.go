package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alanyang/prompt-manager/internal/adapter/memory"
	"github.com/alanyang/prompt-manager/internal/domain/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	_, ok, err := s.Get(ctx, "prompts")
	require.NoError(t, err)
	assert.False(t, ok, "unset key must report ok=false")

	require.NoError(t, s.Set(ctx, "prompts", "[]"))
	require.NoError(t, s.Set(ctx, "prompts", `[{"id":"1"}]`))

	got, ok, err := s.Get(ctx, "prompts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, got, "Set replaces the whole value")
	assert.NoError(t, s.Ping(ctx))
}

func TestEventBus_DeliversToAllSubscribers(t *testing.T) {
	ctx := context.Background()
	bus := memory.NewEventBus()

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	got := map[string]event.Type{}

	sub1, err := bus.Subscribe(ctx, func(_ context.Context, e event.Event) {
		mu.Lock()
		got["a"] = e.Type
		mu.Unlock()
		wg.Done()
	})
	require.NoError(t, err)
	defer sub1.Unsubscribe()

	sub2, err := bus.Subscribe(ctx, func(_ context.Context, e event.Event) {
		mu.Lock()
		got["b"] = e.Type
		mu.Unlock()
		wg.Done()
	})
	require.NoError(t, err)
	defer sub2.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypePromptCreated, "p1")))
	wg.Wait()

	assert.Equal(t, event.TypePromptCreated, got["a"])
	assert.Equal(t, event.TypePromptCreated, got["b"])
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	bus := memory.NewEventBus()

	calls := make(chan event.Event, 4)
	sub, err := bus.Subscribe(ctx, func(_ context.Context, e event.Event) { calls <- e })
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypePromptDeleted, "p1")))
	select {
	case e := <-calls:
		t.Fatalf("unexpected delivery after unsubscribe: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_ContextCancelStopsSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := memory.NewEventBus()

	sub, err := bus.Subscribe(ctx, func(context.Context, event.Event) {})
	require.NoError(t, err)
	cancel()
	sub.Unsubscribe()
}
