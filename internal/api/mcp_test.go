package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"findoc/internal/storage"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return MCPDeps{Store: store}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func saveTestDocs(t *testing.T, store *storage.Store, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := store.SaveDocument(storage.DocumentRecord{
			Filename:       name,
			RawText:        "text of " + name,
			StructuredData: `{"VendorName":"Acme Corp"}`,
			ModelType:      "Invoice",
			FileSize:       100,
		}); err != nil {
			t.Fatalf("SaveDocument(%s): %v", name, err)
		}
	}
}

// --- tests ---

func TestMCPTool_ListDocuments(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	saveTestDocs(t, store, "a.pdf", "b.pdf", "c.pdf")

	handler := mcpListDocuments(deps)
	result, err := handler(context.Background(), makeCallToolRequest("list_documents", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var docs []documentSummary
	if err := json.Unmarshal([]byte(toolText(t, result)), &docs); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(docs) != 3 || docs[0].Filename != "c.pdf" {
		t.Errorf("docs = %+v, want 3 most recent first", docs)
	}
}

func TestMCPTool_ListDocuments_Limit(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	saveTestDocs(t, store, "a.pdf", "b.pdf", "c.pdf")

	handler := mcpListDocuments(deps)
	result, err := handler(context.Background(), makeCallToolRequest("list_documents", map[string]interface{}{
		"limit": 2,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var docs []documentSummary
	json.Unmarshal([]byte(toolText(t, result)), &docs)
	if len(docs) != 2 {
		t.Errorf("len(docs) = %d, want 2", len(docs))
	}
}

func TestMCPTool_GetDocument(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	id, err := store.SaveDocument(storage.DocumentRecord{
		Filename:       "invoice.pdf",
		RawText:        strings.Repeat("x", 9000),
		StructuredData: `{"Total":{"value":150,"currency":"USD"}}`,
		ModelType:      "Invoice",
	})
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	handler := mcpGetDocument(deps)
	result, err := handler(context.Background(), makeCallToolRequest("get_document", map[string]interface{}{
		"id": float64(id),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &doc); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if doc["filename"] != "invoice.pdf" {
		t.Errorf("filename = %v", doc["filename"])
	}
	rawText, _ := doc["raw_text"].(string)
	if len([]rune(rawText)) != 8003 || !strings.HasSuffix(rawText, "...") {
		t.Errorf("raw_text length = %d runes, want clipped to 8000 + ellipsis", len([]rune(rawText)))
	}
}

func TestMCPTool_GetDocument_NotFound(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	handler := mcpGetDocument(deps)
	result, err := handler(context.Background(), makeCallToolRequest("get_document", map[string]interface{}{
		"id": float64(9999),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing document")
	}
}

func TestMCPTool_GetDocument_MissingID(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	handler := mcpGetDocument(deps)
	result, err := handler(context.Background(), makeCallToolRequest("get_document", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error when id is missing")
	}
}

func TestMCPTool_DocumentStats(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	saveTestDocs(t, store, "a.pdf", "b.pdf")

	handler := mcpDocumentStats(deps)
	result, err := handler(context.Background(), makeCallToolRequest("document_stats", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stats map[string]int
	json.Unmarshal([]byte(toolText(t, result)), &stats)
	if stats["count"] != 2 {
		t.Errorf("count = %d, want 2", stats["count"])
	}
}

func TestMCPResource_Recent(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	saveTestDocs(t, store, "a.pdf")

	handler := mcpResourceRecent(deps)
	contents, err := handler(context.Background(), makeReadResourceRequest("docs://recent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1", len(contents))
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	var docs []documentSummary
	if err := json.Unmarshal([]byte(tc.Text), &docs); err != nil {
		t.Fatalf("decoding resource: %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "a.pdf" {
		t.Errorf("docs = %+v", docs)
	}
}
