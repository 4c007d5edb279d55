package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alanyang/prompt-manager/internal/domain/event"
	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
	portbus "github.com/alanyang/prompt-manager/internal/port/eventbus"
	portstorage "github.com/alanyang/prompt-manager/internal/port/storage"
)

// Service owns the prompt collection and the sort-order preference.
// [SRP] It is the only writer of the collection; consumers get copies.
// [DIP] Depends on the storage and event bus ports, not on concrete backends.
//
// Every mutation persists the whole collection before it returns. Change
// events are published after the lock is released so subscribers may call
// back into the service.
type Service struct {
	store  portstorage.Store
	bus    portbus.EventBus
	logger *zap.Logger

	now    func() time.Time
	newID  func() string
	strict bool

	mu        sync.Mutex
	prompts   []domainprompt.Prompt
	sortOrder domainprompt.SortOrder
}

type Option func(*Service)

// WithClock replaces the wall-clock time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithStrictNotFound makes Update and Delete return ErrNotFound for a missing
// id instead of reporting found=false with a nil error.
func WithStrictNotFound() Option {
	return func(s *Service) { s.strict = true }
}

// NewService builds an empty store. Call Load to read the persisted state.
// bus may be nil when no consumer listens for changes.
func NewService(store portstorage.Store, bus portbus.EventBus, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		bus:       bus,
		logger:    logger.Named("prompts"),
		now:       defaultNow,
		newID:     func() string { return uuid.NewString() },
		prompts:   []domainprompt.Prompt{},
		sortOrder: domainprompt.DefaultSortOrder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultNow matches the millisecond precision of ISO-8601 timestamps written by browsers.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Load replaces the in-memory state with what storage holds.
// Absent data leaves the collection empty. Malformed data is logged and the
// current state is kept. Only storage read failures are returned.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("loading prompts from storage")
	raw, ok, err := s.store.Get(ctx, domainprompt.StorageKey)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	if !ok {
		s.logger.Info("no prompts found in storage")
	} else {
		var loaded []domainprompt.Prompt
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.logger.Error("stored prompts are malformed, keeping current state", zap.Error(err))
		} else {
			s.prompts = s.dedupe(loaded)
			s.logger.Info("prompts loaded", zap.Int("count", len(s.prompts)))
		}
	}

	order, ok, err := s.store.Get(ctx, domainprompt.SortOrderKey)
	if err != nil {
		return fmt.Errorf("load sort order: %w", err)
	}
	if ok {
		o := domainprompt.SortOrder(strings.Trim(strings.TrimSpace(order), `"`))
		if o.Valid() {
			s.sortOrder = o
		} else {
			s.logger.Warn("ignoring unknown stored sort order", zap.String("value", order))
		}
	}
	return nil
}

// dedupe keeps the first prompt for every id so a hand-edited store cannot
// break id uniqueness.
func (s *Service) dedupe(in []domainprompt.Prompt) []domainprompt.Prompt {
	out := make([]domainprompt.Prompt, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		if seen[p.ID] {
			s.logger.Warn("dropping duplicate stored prompt", zap.String("prompt_id", p.ID))
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// persistLocked writes next as the full collection. Caller holds s.mu and
// installs next only after this succeeds.
func (s *Service) persistLocked(ctx context.Context, next []domainprompt.Prompt) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal prompts: %w", err)
	}
	if err := s.store.Set(ctx, domainprompt.StorageKey, string(data)); err != nil {
		return fmt.Errorf("persist prompts: %w", err)
	}
	s.logger.Debug("prompts saved", zap.Int("count", len(next)))
	return nil
}

// Add appends a new prompt built from data. Field contents are not validated.
func (s *Service) Add(ctx context.Context, data domainprompt.FormData) (domainprompt.Prompt, error) {
	s.mu.Lock()
	p := domainprompt.New(s.newID(), data, s.now())
	next := append(slices.Clone(s.prompts), p)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return domainprompt.Prompt{}, fmt.Errorf("add prompt: %w", err)
	}
	s.prompts = next
	s.mu.Unlock()

	s.logger.Info("prompt added", zap.String("prompt_id", p.ID), zap.String("category", p.Category))
	s.publish(ctx, event.TypePromptCreated, p.ID)
	return p, nil
}

// Update replaces the editable fields of the prompt with p.ID and refreshes
// UpdatedAt. CreatedAt is always kept from the stored prompt.
// found is false when no prompt has that id; err is then nil unless strict
// not-found mode is on.
func (s *Service) Update(ctx context.Context, p domainprompt.Prompt) (updated domainprompt.Prompt, found bool, err error) {
	s.mu.Lock()
	idx := s.indexLocked(p.ID)
	if idx < 0 {
		s.mu.Unlock()
		return domainprompt.Prompt{}, false, s.missing("update", p.ID)
	}
	next := slices.Clone(s.prompts)
	next[idx] = next[idx].Apply(p.FormData(), s.now())
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return domainprompt.Prompt{}, true, fmt.Errorf("update prompt: %w", err)
	}
	s.prompts = next
	updated = next[idx]
	s.mu.Unlock()

	s.logger.Info("prompt updated", zap.String("prompt_id", updated.ID))
	s.publish(ctx, event.TypePromptUpdated, updated.ID)
	return updated, true, nil
}

// Delete removes the prompt with id. found is false when it did not exist.
func (s *Service) Delete(ctx context.Context, id string) (found bool, err error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, s.missing("delete", id)
	}
	next := slices.Delete(slices.Clone(s.prompts), idx, idx+1)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return true, fmt.Errorf("delete prompt: %w", err)
	}
	s.prompts = next
	s.mu.Unlock()

	s.logger.Info("prompt deleted", zap.String("prompt_id", id))
	s.publish(ctx, event.TypePromptDeleted, id)
	return true, nil
}

func (s *Service) missing(op, id string) error {
	s.logger.Warn("prompt not found", zap.String("op", op), zap.String("prompt_id", id))
	if s.strict {
		return fmt.Errorf("%s prompt %s: %w", op, id, domainprompt.ErrNotFound)
	}
	return nil
}

func (s *Service) indexLocked(id string) int {
	return slices.IndexFunc(s.prompts, func(p domainprompt.Prompt) bool { return p.ID == id })
}

// List returns a copy of the collection in insertion order.
func (s *Service) List(_ context.Context) []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.prompts)
}

// Get returns the prompt with id.
func (s *Service) Get(_ context.Context, id string) (domainprompt.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domainprompt.Prompt{}, false
	}
	return s.prompts[idx], true
}

// Sorted returns a copy ordered by CreatedAt in the preferred direction.
// Prompts created at the same instant keep their insertion order.
func (s *Service) Sorted(ctx context.Context) []domainprompt.Prompt {
	return s.Search(ctx, domainprompt.Filter{})
}

// Search returns the prompts whose title or content contains f.Query
// (case-insensitive) and whose category equals f.Category when set,
// ordered like Sorted.
func (s *Service) Search(_ context.Context, f domainprompt.Filter) []domainprompt.Prompt {
	s.mu.Lock()
	order := s.sortOrder
	out := make([]domainprompt.Prompt, 0, len(s.prompts))
	query := strings.ToLower(strings.TrimSpace(f.Query))
	for _, p := range s.prompts {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Content), query) {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b domainprompt.Prompt) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if order == domainprompt.SortDesc {
			return -c
		}
		return c
	})
	return out
}

// Categories returns the distinct non-empty categories in lexical order.
func (s *Service) Categories(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, p := range s.prompts {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	slices.Sort(out)
	return out
}

// ExportAll snapshots the whole collection into an export file.
// Delivering the file is left to the caller.
func (s *Service) ExportAll(_ context.Context) domainprompt.ExportFile {
	s.mu.Lock()
	snapshot := slices.Clone(s.prompts)
	now := s.now()
	s.mu.Unlock()

	f := domainprompt.NewExportFile(snapshot, now)
	s.logger.Info("prompts exported", zap.Int("count", len(snapshot)), zap.String("file", f.Name))
	return f
}

// SortOrder returns the current sort-order preference.
func (s *Service) SortOrder(_ context.Context) domainprompt.SortOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortOrder
}

// ToggleSortOrder flips and persists the preference. The collection itself
// is not reordered.
func (s *Service) ToggleSortOrder(ctx context.Context) (domainprompt.SortOrder, error) {
	s.mu.Lock()
	next := s.sortOrder.Toggle()
	if err := s.store.Set(ctx, domainprompt.SortOrderKey, string(next)); err != nil {
		s.mu.Unlock()
		return s.SortOrder(ctx), fmt.Errorf("persist sort order: %w", err)
	}
	s.sortOrder = next
	s.mu.Unlock()

	s.logger.Info("sort order changed", zap.String("sort_order", string(next)))
	s.publish(ctx, event.TypeSortOrderChanged, "")
	return next, nil
}

func (s *Service) publish(ctx context.Context, t event.Type, entityID string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event.New(t, entityID)); err != nil {
		s.logger.Error("failed to publish event", zap.String("type", string(t)), zap.String("entity_id", entityID), zap.Error(err))
	}
}
