package prompt

import (
	"time"
)

// StorageKey is the storage key holding the JSON array of all prompts.
const StorageKey = "prompts"

// SortOrderKey is the storage key holding the persisted sort-order preference.
const SortOrderKey = "sortOrder"

// Prompt is a persisted text snippet.
// ID and CreatedAt are fixed at creation; UpdatedAt moves forward on every update.
type Prompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FormData is the user-editable part of a Prompt.
type FormData struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// New builds a prompt from form data with both timestamps set to now.
func New(id string, data FormData, now time.Time) Prompt {
	return Prompt{
		ID:        id,
		Title:     data.Title,
		Content:   data.Content,
		Category:  data.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FormData returns the editable fields of p.
func (p Prompt) FormData() FormData {
	return FormData{Title: p.Title, Content: p.Content, Category: p.Category}
}

// Apply returns p with the editable fields replaced and UpdatedAt moved to now.
// UpdatedAt never moves backwards, even if the clock does.
func (p Prompt) Apply(data FormData, now time.Time) Prompt {
	p.Title = data.Title
	p.Content = data.Content
	p.Category = data.Category
	if now.After(p.UpdatedAt) {
		p.UpdatedAt = now
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

// SortOrder is the display order preference over CreatedAt.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultSortOrder is used when no valid preference is stored.
const DefaultSortOrder = SortDesc

// Valid reports whether o is one of the known orders.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Filter narrows a listing. Zero value matches everything.
type Filter struct {
	Query    string
	Category string
}
