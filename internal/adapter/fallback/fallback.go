// Package fallback picks the storage backend once, at construction time.
package fallback

import (
	"context"

	"go.uber.org/zap"

	portstorage "github.com/alanyang/prompt-manager/internal/port/storage"
)

// Select returns primary when it is usable and secondary otherwise.
// A nil primary, or one whose Ping fails, is treated as unavailable. The
// choice is final: callers never branch on availability again.
func Select(ctx context.Context, primary, secondary portstorage.Store, logger *zap.Logger) portstorage.Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if primary == nil {
		logger.Warn("durable storage is not available, using session storage as fallback")
		return secondary
	}
	if p, ok := primary.(portstorage.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			logger.Warn("durable storage is not available, using session storage as fallback", zap.Error(err))
			return secondary
		}
	}
	return primary
}
