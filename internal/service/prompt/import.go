package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	"github.com/alanyang/prompt-manager/internal/domain/event"
	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
)

// importEnvelope keeps the two validated fields raw so that "missing" and
// "wrong type" can be told apart from "not JSON at all".
type importEnvelope struct {
	Version json.RawMessage `json:"version"`
	Prompts json.RawMessage `json:"prompts"`
}

// Import merges an export document read from r into the collection.
//
// The read happens without holding the lock; the merge then runs against the
// collection as it is at that moment, so edits made while the read was pending
// are kept. Prompts whose id already exists get their editable fields replaced
// and UpdatedAt refreshed; others are appended with their ids and timestamps
// as given. The collection is persisted once. On error nothing changes.
func (s *Service) Import(ctx context.Context, r io.Reader) (domainprompt.ImportSummary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		s.logger.Warn("import read failed", zap.Error(err))
		return domainprompt.ImportSummary{}, fmt.Errorf("%w: %w", domainprompt.ErrImportRead, err)
	}

	incoming, err := decodeImport(data)
	if err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		return domainprompt.ImportSummary{}, err
	}

	s.mu.Lock()
	summary, err := s.mergeLocked(ctx, incoming)
	s.mu.Unlock()
	if err != nil {
		return domainprompt.ImportSummary{}, fmt.Errorf("import prompts: %w", err)
	}

	s.logger.Info("prompts imported",
		zap.Int("added", summary.Added),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
	)
	s.publish(ctx, event.TypePromptsImported, "")
	return summary, nil
}

func decodeImport(data []byte) ([]domainprompt.Prompt, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", domainprompt.ErrImportParse, err)
	}

	var env importEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: document is not an object", domainprompt.ErrInvalidImportFormat)
	}
	if !hasValue(env.Version) {
		return nil, fmt.Errorf("%w: missing version", domainprompt.ErrInvalidImportFormat)
	}
	if trimmed := bytes.TrimSpace(env.Prompts); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: prompts must be an array", domainprompt.ErrInvalidImportFormat)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(env.Prompts, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", domainprompt.ErrImportParse, err)
	}

	prompts := make([]domainprompt.Prompt, 0, len(entries))
	for i, raw := range entries {
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, fmt.Errorf("%w: prompts[%d] is not an object", domainprompt.ErrInvalidImportFormat, i)
		}
		var p domainprompt.Prompt
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: prompts[%d]: %w", domainprompt.ErrImportParse, i, err)
		}
		prompts = append(prompts, p)
	}
	return prompts, nil
}

// hasValue treats absent, null, false, 0 and "" as missing.
func hasValue(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

func (s *Service) mergeLocked(ctx context.Context, incoming []domainprompt.Prompt) (domainprompt.ImportSummary, error) {
	var summary domainprompt.ImportSummary
	now := s.now()

	next := slices.Clone(s.prompts)
	index := make(map[string]int, len(next)+len(incoming))
	for i, p := range next {
		index[p.ID] = i
	}

	for _, in := range incoming {
		if i, ok := index[in.ID]; ok && in.ID != "" {
			if next[i].FormData() == in.FormData() {
				summary.Unchanged++
				continue
			}
			next[i] = next[i].Apply(in.FormData(), now)
			summary.Updated++
			continue
		}

		if in.ID == "" {
			in.ID = s.newID()
		}
		if in.CreatedAt.IsZero() {
			in.CreatedAt = now
		}
		if in.UpdatedAt.Before(in.CreatedAt) {
			in.UpdatedAt = in.CreatedAt
		}
		index[in.ID] = len(next)
		next = append(next, in)
		summary.Added++
	}

	if err := s.persistLocked(ctx, next); err != nil {
		return domainprompt.ImportSummary{}, err
	}
	s.prompts = next
	return summary, nil
}
