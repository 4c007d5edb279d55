package memory

import (
	"context"
	"sync"

	"github.com/alanyang/prompt-manager/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-manager/internal/port/eventbus"
)

// EventBus delivers events to in-process subscribers. Each subscription has
// its own goroutine and buffered queue, so a slow handler never blocks Publish
// or other subscribers. Events are dropped for a subscriber whose queue is full.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	buffer int
}

func NewEventBus() *EventBus {
	return &EventBus{
		subs:   make(map[*subscription]struct{}),
		buffer: 64,
	}
}

func (eb *EventBus) Publish(_ context.Context, e event.Event) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for sub := range eb.subs {
		select {
		case sub.ch <- e:
		default:
		}
	}
	return nil
}

// Subscribe runs handler for every published event until Unsubscribe is
// called or ctx is cancelled.
func (eb *EventBus) Subscribe(ctx context.Context, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ch:     make(chan event.Event, eb.buffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	eb.mu.Lock()
	eb.subs[sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer close(sub.done)
		defer eb.remove(sub)
		for {
			select {
			case <-subCtx.Done():
				return
			case e := <-sub.ch:
				handler(subCtx, e)
			}
		}
	}()

	return sub, nil
}

func (eb *EventBus) remove(sub *subscription) {
	eb.mu.Lock()
	delete(eb.subs, sub)
	eb.mu.Unlock()
}

type subscription struct {
	ch     chan event.Event
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
