package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alanyang/prompt-manager/internal/adapter/memory"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
	"github.com/alanyang/prompt-manager/internal/transport"
	mcptransport "github.com/alanyang/prompt-manager/internal/transport/mcp"
)

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Routes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zaptest.NewLogger(t)
	bus := memory.NewEventBus()
	svc := promptsvc.NewService(memory.NewStore(), bus, logger)
	r := transport.NewRouter(ctx, svc, bus, nil, logger)

	w := serve(r, http.MethodPost, "/api/prompts/", `{"title":"t","content":"c"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/prompts/", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/settings/sort-order", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/mcp", "{}")
	assert.Equal(t, http.StatusNotFound, w.Code, "mcp is not mounted when disabled")
}

func TestNewRouter_MountsMCP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewEventBus()
	svc := promptsvc.NewService(memory.NewStore(), bus, nil)
	mcpSrv := mcptransport.New(ctx, svc, nil)
	r := transport.NewRouter(ctx, svc, bus, mcpSrv, nil)

	w := serve(r, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sessionID := w.Header().Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)
	assert.True(t, mcpSrv.Registry().IsConnected(sessionID))
	assert.Equal(t, 1, mcpSrv.Registry().Count())
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := promptsvc.NewService(memory.NewStore(), nil, nil)
	r := transport.NewRouter(ctx, svc, nil, nil, nil)

	w := serve(r, http.MethodOptions, "/api/prompts/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
