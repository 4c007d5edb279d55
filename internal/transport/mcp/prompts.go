package mcp

import (
	"context"
	"fmt"
	"slices"
	"sync"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
)

// Catalog exposes every stored prompt as an MCP native prompt named by its id.
// [SRP] Prompt registration only. Sync is driven by collection change events.
type Catalog struct {
	srv *mcpserver.MCPServer
	svc *promptsvc.Service

	mu    sync.Mutex
	names map[string]struct{}
}

func NewCatalog(srv *mcpserver.MCPServer, svc *promptsvc.Service) *Catalog {
	return &Catalog{
		srv:   srv,
		svc:   svc,
		names: make(map[string]struct{}),
	}
}

// Sync re-registers all stored prompts and removes the ones that no longer exist.
func (c *Catalog) Sync(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.svc.List(ctx)
	next := make(map[string]struct{}, len(current))
	for _, p := range current {
		next[p.ID] = struct{}{}
		description := p.Title
		if p.Category != "" {
			description = fmt.Sprintf("%s [%s]", p.Title, p.Category)
		}
		c.srv.AddPrompt(
			mcpmcp.NewPrompt(p.ID, mcpmcp.WithPromptDescription(description)),
			promptHandler(p.ID, c.svc),
		)
	}

	var stale []string
	for name := range c.names {
		if _, ok := next[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		c.srv.DeletePrompts(stale...)
	}
	c.names = next
}

// Names returns the registered prompt names in lexical order.
func (c *Catalog) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.names))
	for name := range c.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// promptHandler reads the prompt at request time so edits show up without
// waiting for the next Sync.
func promptHandler(id string, svc *promptsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		p, ok := svc.Get(ctx, id)
		if !ok {
			return nil, fmt.Errorf("prompt %s not found", id)
		}

		return mcpmcp.NewGetPromptResult(
			p.Title,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: p.Content,
					},
				),
			},
		), nil
	}
}
