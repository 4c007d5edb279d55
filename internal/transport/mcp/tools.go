package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
)

// RegisterTools registers all MCP tools on the server.
// [SRP] Tool registration only.
func RegisterTools(s *mcpserver.MCPServer, svc *promptsvc.Service) {
	s.AddTool(mcpmcp.NewTool("list_prompts",
		mcpmcp.WithDescription("List stored prompts. Without filters the collection is returned in insertion order; with sorted=true or any filter it is ordered by creation time using the saved sort order."),
		mcpmcp.WithString("query", mcpmcp.Description("Case-insensitive text matched against title and content")),
		mcpmcp.WithString("category", mcpmcp.Description("Exact category to filter on")),
		mcpmcp.WithBoolean("sorted", mcpmcp.Description("Order by creation time using the saved sort order")),
	), listPromptsHandler(svc))

	s.AddTool(mcpmcp.NewTool("get_prompt",
		mcpmcp.WithDescription("Return a single prompt by id."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id")),
	), getPromptHandler(svc))

	s.AddTool(mcpmcp.NewTool("add_prompt",
		mcpmcp.WithDescription("Create a prompt. Returns the stored prompt with its generated id and timestamps."),
		mcpmcp.WithString("title", mcpmcp.Required(), mcpmcp.Description("Prompt title")),
		mcpmcp.WithString("content", mcpmcp.Required(), mcpmcp.Description("Prompt body")),
		mcpmcp.WithString("category", mcpmcp.Description("Optional category label")),
	), addPromptHandler(svc))

	s.AddTool(mcpmcp.NewTool("update_prompt",
		mcpmcp.WithDescription("Edit a prompt. Omitted fields keep their current value. The creation time never changes."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id")),
		mcpmcp.WithString("title", mcpmcp.Description("New title")),
		mcpmcp.WithString("content", mcpmcp.Description("New body")),
		mcpmcp.WithString("category", mcpmcp.Description("New category")),
	), updatePromptHandler(svc))

	s.AddTool(mcpmcp.NewTool("delete_prompt",
		mcpmcp.WithDescription("Delete a prompt by id."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id")),
	), deletePromptHandler(svc))

	s.AddTool(mcpmcp.NewTool("export_prompts",
		mcpmcp.WithDescription("Return the whole collection as an export document (version 1.0) together with its suggested file name."),
	), exportPromptsHandler(svc))

	s.AddTool(mcpmcp.NewTool("import_prompts",
		mcpmcp.WithDescription("Merge an export document into the collection. Prompts with a known id are updated, others are added. Returns added/updated/unchanged counts."),
		mcpmcp.WithString("document", mcpmcp.Required(), mcpmcp.Description("Export document as JSON text")),
	), importPromptsHandler(svc))

	s.AddTool(mcpmcp.NewTool("toggle_sort_order",
		mcpmcp.WithDescription("Flip the saved sort order between asc and desc and return the new value."),
	), toggleSortOrderHandler(svc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func listPromptsHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		filter := domainprompt.Filter{
			Query:    mcpmcp.ParseString(req, "query", ""),
			Category: mcpmcp.ParseString(req, "category", ""),
		}
		sorted := mcpmcp.ParseBoolean(req, "sorted", false)

		var prompts []domainprompt.Prompt
		switch {
		case filter != (domainprompt.Filter{}):
			prompts = svc.Search(ctx, filter)
		case sorted:
			prompts = svc.Sorted(ctx)
		default:
			prompts = svc.List(ctx)
		}
		return jsonResult(prompts), nil
	}
}

func getPromptHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseString(req, "id", "")
		if id == "" {
			return mcpmcp.NewToolResultText("error: id required"), nil
		}
		p, ok := svc.Get(ctx, id)
		if !ok {
			return mcpmcp.NewToolResultText("error: prompt not found"), nil
		}
		return jsonResult(p), nil
	}
}

func addPromptHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		data := domainprompt.FormData{
			Title:    mcpmcp.ParseString(req, "title", ""),
			Content:  mcpmcp.ParseString(req, "content", ""),
			Category: mcpmcp.ParseString(req, "category", ""),
		}

		p, err := svc.Add(ctx, data)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(p), nil
	}
}

func updatePromptHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseString(req, "id", "")
		current, ok := svc.Get(ctx, id)
		if id == "" || !ok {
			return mcpmcp.NewToolResultText("error: prompt not found"), nil
		}

		next := current
		next.Title = mcpmcp.ParseString(req, "title", current.Title)
		next.Content = mcpmcp.ParseString(req, "content", current.Content)
		next.Category = mcpmcp.ParseString(req, "category", current.Category)

		updated, found, err := svc.Update(ctx, next)
		switch {
		case errors.Is(err, domainprompt.ErrNotFound) || (err == nil && !found):
			return mcpmcp.NewToolResultText("error: prompt not found"), nil
		case err != nil:
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(updated), nil
	}
}

func deletePromptHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseString(req, "id", "")
		found, err := svc.Delete(ctx, id)
		switch {
		case errors.Is(err, domainprompt.ErrNotFound) || (err == nil && !found):
			return mcpmcp.NewToolResultText("error: prompt not found"), nil
		case err != nil:
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return mcpmcp.NewToolResultText(`{"ok":true}`), nil
	}
}

func exportPromptsHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		f := svc.ExportAll(ctx)
		return jsonResult(map[string]any{
			"file_name": f.Name,
			"document":  f.Document,
		}), nil
	}
}

func importPromptsHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		doc := mcpmcp.ParseString(req, "document", "")
		if strings.TrimSpace(doc) == "" {
			return mcpmcp.NewToolResultText("error: document required"), nil
		}

		summary, err := svc.Import(ctx, strings.NewReader(doc))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(summary), nil
	}
}

func toggleSortOrderHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		order, err := svc.ToggleSortOrder(ctx)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(map[string]string{"sort_order": string(order)}), nil
	}
}

func jsonResult(v any) *mcpmcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err))
	}
	return mcpmcp.NewToolResultText(string(data))
}
