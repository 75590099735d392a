package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"findoc/internal/chat"
	"findoc/internal/extract"
	"findoc/internal/session"
)

const maxChatBodySize = 1 << 20 // 1MB

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// handleAsk answers a question about the pending document. A failure of the
// chat service becomes the answer text so the conversation flow is never
// interrupted.
func handleAsk(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
		defer r.Body.Close()

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Question == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "question is required")
			return
		}

		doc, ok := deps.Session.Pending()
		if !ok {
			httpError(w, http.StatusConflict, "invalid_request_error", "process a document before asking about it")
			return
		}

		answer := askAbout(deps, r, doc, req.Question)

		turn := session.Turn{Question: req.Question, Answer: answer, AskedAt: time.Now().UTC()}
		deps.Session.AppendTurn(turn)
		writeJSON(w, askResponse{Question: req.Question, Answer: answer})
	}
}

func askAbout(deps AppDeps, r *http.Request, doc session.PendingDocument, question string) string {
	if deps.Chat == nil {
		return "Chat error: conversational service is not configured"
	}

	fieldsJSON, err := extract.EncodeFields(doc.Fields)
	if err != nil {
		return fmt.Sprintf("Chat error: %v", err)
	}

	prompt := chat.BuildPrompt(doc.Filename, doc.RawText, string(fieldsJSON), question)
	answer, err := deps.Chat.Ask(r.Context(), chat.SystemPrompt, prompt)
	if err != nil {
		return fmt.Sprintf("Chat error: %v", err)
	}
	return answer
}

func handleTranscript(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, deps.Session.Transcript())
	}
}

func handleClearChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Session.ClearTranscript()
		writeJSON(w, map[string]string{"status": "cleared"})
	}
}
