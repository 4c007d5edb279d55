package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/alanyang/prompt-manager/internal/domain/event"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
)

const (
	serverName    = "prompt-manager"
	serverVersion = "1.0.0"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] Server lifecycle and session open/close only.
//
//	Tools are registered in tools.go, stored prompts in prompts.go, session state in registry.go.
type Server struct {
	mcpSrv  *mcpserver.MCPServer
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *SessionRegistry
	catalog *Catalog
	logger  *zap.Logger
}

// New creates the MCP transport server and publishes the current collection
// as MCP prompts.
func New(ctx context.Context, svc *promptsvc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		reg:    NewSessionRegistry(),
		logger: logger.Named("mcp"),
	}

	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(s.onSessionOpen)
	hooks.AddOnUnregisterSession(s.onSessionClose)

	s.mcpSrv = mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)
	s.reg.SetMCPServer(s.mcpSrv)

	RegisterTools(s.mcpSrv, svc)
	s.catalog = NewCatalog(s.mcpSrv, svc)
	s.catalog.Sync(ctx)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(s.mcpSrv)
	return s
}

// Handler returns an http.Handler that serves the MCP streamable HTTP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func (s *Server) Registry() *SessionRegistry {
	return s.reg
}

func (s *Server) Catalog() *Catalog {
	return s.catalog
}

// HandleEvent keeps the prompt catalog in step with the collection and
// forwards the change to every connected client. It is meant to be
// subscribed to the event bus.
func (s *Server) HandleEvent(ctx context.Context, e event.Event) {
	if e.Type != event.TypeSortOrderChanged {
		s.catalog.Sync(ctx)
	}
	if err := s.reg.Notify(ctx, e); err != nil {
		s.logger.Warn("mcp notification failed", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

func (s *Server) onSessionOpen(_ context.Context, session mcpserver.ClientSession) {
	s.reg.Register(session.SessionID())
	s.logger.Info("session opened", zap.String("session_id", session.SessionID()))
}

func (s *Server) onSessionClose(_ context.Context, session mcpserver.ClientSession) {
	if s.reg.Unregister(session.SessionID()) {
		s.logger.Info("session closed", zap.String("session_id", session.SessionID()))
	}
}
