package fallback_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyang/prompt-manager/internal/adapter/fallback"
	"github.com/alanyang/prompt-manager/internal/adapter/memory"
	portstorage "github.com/alanyang/prompt-manager/internal/port/storage"
)

type pingStore struct {
	*memory.Store
	err error
}

func (p pingStore) Ping(context.Context) error { return p.err }

func TestSelect_PrimaryHealthy(t *testing.T) {
	primary := pingStore{Store: memory.NewStore()}
	secondary := memory.NewStore()

	got := fallback.Select(context.Background(), primary, secondary, nil)
	assert.Equal(t, portstorage.Store(primary), got)
}

func TestSelect_PrimaryPingFails(t *testing.T) {
	primary := pingStore{Store: memory.NewStore(), err: portstorage.ErrUnavailable}
	secondary := memory.NewStore()

	got := fallback.Select(context.Background(), primary, secondary, nil)
	assert.Same(t, secondary, got)
}

func TestSelect_NilPrimary(t *testing.T) {
	secondary := memory.NewStore()
	got := fallback.Select(context.Background(), nil, secondary, nil)
	assert.Same(t, secondary, got)
}

func TestSelect_PrimaryWithoutPingIsTrusted(t *testing.T) {
	type plain struct{ portstorage.Store }
	primary := plain{Store: memory.NewStore()}

	got := fallback.Select(context.Background(), primary, memory.NewStore(), nil)
	assert.Equal(t, portstorage.Store(primary), got)
}
