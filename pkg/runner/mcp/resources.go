package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerNotesResource(srv, svc)
	registerNoteTemplate(srv, svc)
}

func registerNotesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		fmt.Sprintf("notes://%s", svc.Path()),
		"Notes",
		mcp.WithResourceDescription("Every note in the mapping, in key order."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		notes, err := svc.ListNotes(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"path":  svc.Path(),
			"notes": notes,
			"count": len(notes),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerNoteTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		fmt.Sprintf("notes://%s/{id}", svc.Path()),
		"Note",
		mcp.WithTemplateDescription("A single note by id."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("note id is required")
		}

		dto, err := svc.NoteByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"note": dto})
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
