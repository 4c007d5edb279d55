package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const notificationMethod = "notifications/message"

// SessionRegistry is the in-memory registry of active MCP sessions.
//
// [SRP] Session bookkeeping and notification dispatch only.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]time.Time // sessionID → connected at

	// mcpSrv is set after the MCP server is constructed.
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

// NewSessionRegistry creates a registry without an MCP server reference.
// Call SetMCPServer once the mcp-go server is constructed.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]time.Time),
	}
}

func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

// Register records a newly opened session. Re-registering keeps the original
// connect time.
func (r *SessionRegistry) Register(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = time.Now()
	}
}

// Unregister removes a session when it closes. It reports whether the
// session was known.
func (r *SessionRegistry) Unregister(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

func (r *SessionRegistry) IsConnected(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Notify broadcasts event to every connected session as a
// notifications/message. It is a no-op while nobody is connected.
func (r *SessionRegistry) Notify(_ context.Context, event any) error {
	if r.Count() == 0 {
		return nil
	}

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()

	if srv == nil {
		return fmt.Errorf("mcp server not initialized")
	}

	params, err := toParams(event)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}
	srv.SendNotificationToAllClients(notificationMethod, params)
	return nil
}

func toParams(event any) (map[string]any, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": event}, nil
	}
	return params, nil
}
