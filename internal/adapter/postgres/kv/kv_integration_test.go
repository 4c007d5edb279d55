//go:build integration

package kv_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgkv "github.com/alanyang/prompt-manager/internal/adapter/postgres/kv"
	"github.com/alanyang/prompt-manager/internal/testutil"
)

func TestKV_MissingKey(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	store := pgkv.New(pool)

	_, ok, err := store.Get(context.Background(), "missing-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_Upsert(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := pgkv.New(pool)
	key := "prompts-" + uuid.NewString()[:8]

	require.NoError(t, store.Set(ctx, key, "[]"))
	require.NoError(t, store.Set(ctx, key, `[{"id":"1"}]`))

	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, got)
	assert.NoError(t, store.Ping(ctx))
}
