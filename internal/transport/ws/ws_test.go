package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/prompt-manager/internal/domain/event"
	"github.com/alanyang/prompt-manager/internal/transport/ws"
)

func init() { gin.SetMode(gin.TestMode) }

func TestHub_BroadcastsEvents(t *testing.T) {
	hub := ws.NewHub(nil)
	r := gin.New()
	hub.Register(r.Group("/ws"))

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.HandleEvent(context.Background(), event.New(event.TypePromptCreated, "p1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"prompt_created"`)
	assert.Contains(t, string(msg), `"entity_id":"p1"`)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := ws.NewHub(nil)
	assert.NotPanics(t, func() { hub.Broadcast(map[string]string{"k": "v"}) })
	assert.Equal(t, 0, hub.Clients())
}
