package eventbus

import (
	"context"

	"github.com/alanyang/prompt-manager/internal/domain/event"
)

//go:generate mockgen -destination=../../mocks/mock_eventbus.go -package=mocks github.com/alanyang/prompt-manager/internal/port/eventbus EventBus

type Handler func(ctx context.Context, e event.Event)

type Subscription interface {
	Unsubscribe()
}

// EventBus fans prompt change events out to every subscriber.
type EventBus interface {
	Publish(ctx context.Context, e event.Event) error
	Subscribe(ctx context.Context, handler Handler) (Subscription, error)
}
