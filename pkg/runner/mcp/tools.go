package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListNotesTool(srv, svc)
	registerGetNoteTool(srv, svc)
	registerSaveNoteTool(srv, svc)
	registerDeleteNoteTool(srv, svc)
}

func registerListNotesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_notes",
		mcp.WithDescription("List every note with its id, title and text."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		notes, err := svc.ListNotes(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"notes": notes,
			"count": len(notes),
		})
	})
}

func registerGetNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_note",
		mcp.WithDescription("Fetch a single note by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Note identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.NoteByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSaveNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"save_note",
		mcp.WithDescription("Create or update a note. Without an id a new note is created; saving blank text with an id deletes that note."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Note text. Leading and trailing whitespace is trimmed."),
		),
		mcp.WithString("id",
			mcp.Description("Existing note id to overwrite."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id := request.GetString("id", "")

		result, err := svc.SaveNote(ctx, text, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(result)
	})
}

func registerDeleteNoteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_note",
		mcp.WithDescription("Delete a note by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Note identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteNote(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"id": id, "deleted": true})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
