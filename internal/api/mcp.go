package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"findoc/internal/storage"
)

// mcpTextLimit bounds the raw text returned through get_document so a tool
// result stays usable inside a model context.
const mcpTextLimit = 8000

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store *storage.Store
}

// NewMCPServer creates an MCP server exposing the stored document records.
// All tools are read-only; persisting a record remains an explicit user
// action through the HTTP API or CLI.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"findoc",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("findoc stores processed financial documents: extracted text, structured fields, and export metadata."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List stored document records, most recently saved first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 20)")),
		),
		mcpListDocuments(deps),
	)

	s.AddTool(
		mcp.NewTool("get_document",
			mcp.WithDescription("Fetch one stored document record by id, including extracted text and structured fields."),
			mcp.WithNumber("id", mcp.Description("Record id"), mcp.Required()),
		),
		mcpGetDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("document_stats",
			mcp.WithDescription("Return the total number of stored document records."),
		),
		mcpDocumentStats(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"docs://recent",
			"Recent Documents",
			mcp.WithResourceDescription("Last 10 stored document records (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

// documentSummary is the listing shape shared by the list tool and the
// recent resource.
type documentSummary struct {
	ID              int64     `json:"id"`
	Filename        string    `json:"filename"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
	ModelType       string    `json:"model_type"`
	FileSize        int64     `json:"file_size"`
}

func summarize(records []storage.DocumentRecord, limit int) []documentSummary {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]documentSummary, len(records))
	for i, rec := range records {
		out[i] = documentSummary{
			ID:              rec.ID,
			Filename:        rec.Filename,
			UploadTimestamp: rec.UploadTimestamp,
			ModelType:       rec.ModelType,
			FileSize:        rec.FileSize,
		}
	}
	return out
}

func mcpListDocuments(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		records, err := deps.Store.ListDocuments()
		if err != nil {
			return mcpError(fmt.Sprintf("listing documents failed: %v", err)), nil
		}

		b, err := json.Marshal(summarize(records, limit))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		rec, err := deps.Store.GetDocument(int64(id))
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("document %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("fetching document failed: %v", err)), nil
		}

		structured := json.RawMessage(rec.StructuredData)
		if !json.Valid(structured) {
			structured = json.RawMessage(`{}`)
		}

		result := map[string]any{
			"id":               rec.ID,
			"filename":         rec.Filename,
			"upload_timestamp": rec.UploadTimestamp,
			"model_type":       rec.ModelType,
			"file_size":        rec.FileSize,
			"structured_data":  structured,
			"raw_text":         clipText(rec.RawText, mcpTextLimit),
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal document: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDocumentStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(map[string]int{"count": deps.Store.CountDocuments()})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records, err := deps.Store.ListDocuments()
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}

		b, err := json.Marshal(summarize(records, 10))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal documents: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func clipText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
