package transport

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	porteventbus "github.com/alanyang/prompt-manager/internal/port/eventbus"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"

	mcptransport "github.com/alanyang/prompt-manager/internal/transport/mcp"
	prompthandler "github.com/alanyang/prompt-manager/internal/transport/prompt"
	settingshandler "github.com/alanyang/prompt-manager/internal/transport/settings"
	wshandler "github.com/alanyang/prompt-manager/internal/transport/ws"
)

// NewRouter builds the HTTP surface. mcpServer may be nil when MCP is disabled.
// Subscriptions made here live as long as ctx.
func NewRouter(
	ctx context.Context,
	promptSvc *promptsvc.Service,
	eventBus porteventbus.EventBus,
	mcpServer *mcptransport.Server,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware())

	api := r.Group("/api")

	prompthandler.Register(api.Group("/prompts"), promptSvc)
	settingshandler.Register(api.Group("/settings"), promptSvc)

	hub := wshandler.NewHub(logger)
	hub.Register(api.Group("/ws"))

	if mcpServer != nil {
		r.Any("/mcp", gin.WrapH(mcpServer.Handler()))
	}

	// Bridge: every change event goes to browser sockets and, when enabled,
	// to the MCP prompt catalog and connected MCP clients.
	if eventBus != nil {
		if _, err := eventBus.Subscribe(ctx, hub.HandleEvent); err != nil {
			logger.Error("failed to subscribe WS hub to event bus", zap.Error(err))
		}
		if mcpServer != nil {
			if _, err := eventBus.Subscribe(ctx, mcpServer.HandleEvent); err != nil {
				logger.Error("failed to subscribe MCP server to event bus", zap.Error(err))
			}
		}
	}

	return r
}
