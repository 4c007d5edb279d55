package mcp_test

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"

	"github.com/alanyang/prompt-manager/internal/domain/event"
	mcptransport "github.com/alanyang/prompt-manager/internal/transport/mcp"
)

// ── Registry unit tests ───────────────────────────────────────────────────────

func TestRegistry_RegisterUnregister(t *testing.T) {
	reg := mcptransport.NewSessionRegistry()

	reg.Register("session-1")
	assert.True(t, reg.IsConnected("session-1"), "session should be connected after register")
	assert.Equal(t, 1, reg.Count())

	reg.Register("session-1")
	assert.Equal(t, 1, reg.Count(), "re-register must not duplicate")

	assert.True(t, reg.Unregister("session-1"), "unregister should succeed")
	assert.False(t, reg.IsConnected("session-1"))
	assert.False(t, reg.Unregister("session-1"), "second unregister is a no-op")
}

func TestNotify_NoSessions_NoOp(t *testing.T) {
	reg := mcptransport.NewSessionRegistry()

	err := reg.Notify(context.Background(), event.New(event.TypePromptCreated, "p1"))
	assert.NoError(t, err, "Notify with no sessions must be a no-op")
}

func TestNotify_ServerMissing(t *testing.T) {
	reg := mcptransport.NewSessionRegistry()
	reg.Register("session-1")

	err := reg.Notify(context.Background(), event.New(event.TypePromptDeleted, "p1"))
	assert.Error(t, err)
}

func TestNotify_WithServer(t *testing.T) {
	reg := mcptransport.NewSessionRegistry()
	reg.SetMCPServer(mcpserver.NewMCPServer("test", "0.0.0"))
	reg.Register("session-1")

	err := reg.Notify(context.Background(), event.New(event.TypeSortOrderChanged, ""))
	assert.NoError(t, err)
}
