package event

import (
	"time"
)

type Type string

const (
	TypePromptCreated    Type = "prompt_created"
	TypePromptUpdated    Type = "prompt_updated"
	TypePromptDeleted    Type = "prompt_deleted"
	TypePromptsImported  Type = "prompts_imported"
	TypeSortOrderChanged Type = "sort_order_changed"
)

// Event carries identifiers only, not full state.
// Subscribers read fresh state from the prompt service.
// EntityID is empty for collection-wide events.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID string) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
