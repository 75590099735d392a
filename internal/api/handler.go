// Package api exposes the HTTP and MCP surfaces of the document processor.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"findoc/internal/docintel"
	"findoc/internal/session"
	"findoc/internal/storage"
)

// maxUploadBodySize bounds a multipart upload request.
const maxUploadBodySize = 20 << 20 // 20MB

// Analyzer abstracts the document-understanding client for the API layer.
type Analyzer interface {
	Analyze(ctx context.Context, modelID, contentType string, body []byte) (*docintel.AnalyzeResult, error)
}

// Asker abstracts the conversational AI client for the API layer.
type Asker interface {
	Ask(ctx context.Context, system, user string) (string, error)
}

// AppDeps holds everything the HTTP handlers need.
type AppDeps struct {
	Store    *storage.Store
	Session  *session.Session
	Analyzer Analyzer
	Chat     Asker // optional; if nil, chat reports the service as unavailable
}

// NewAppHandler builds the application router.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Post("/documents/analyze", handleAnalyze(deps))
	r.Get("/documents/pending", handlePending(deps))
	r.Post("/documents", handleSave(deps))
	r.Get("/documents", handleListDocuments(deps))
	r.Get("/documents/count", handleCount(deps))
	r.Get("/documents/export.csv", handleExportCSV(deps))
	r.Get("/documents/export.xlsx", handleExportXLSX(deps))

	r.Post("/chat", handleAsk(deps))
	r.Get("/chat", handleTranscript(deps))
	r.Delete("/chat", handleClearChat(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
