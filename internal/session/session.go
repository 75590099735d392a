// Package session holds the transient state of one user's interaction: the
// last analyzed, not-yet-saved document and the local chat transcript.
package session

import (
	"sync"
	"time"

	"findoc/internal/extract"
)

// PendingDocument is a processed document held in memory until the user
// explicitly saves it or analyzes another one.
type PendingDocument struct {
	Filename   string
	RawText    string
	Fields     map[string]extract.FieldValue
	ModelType  string
	FileSize   int64
	AnalyzedAt time.Time
}

// Turn is one question/answer exchange, kept only for display; the chat
// service never sees previous turns.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Session is the explicit per-user interaction context. The mutex keeps it
// safe should the deployment ever grow past one caller at a time.
type Session struct {
	mu         sync.Mutex
	pending    *PendingDocument
	transcript []Turn
}

// New creates an empty session.
func New() *Session {
	return &Session{}
}

// SetPending replaces the pending document. A fresh analysis starts a fresh
// conversation, so the transcript is reset too.
func (s *Session) SetPending(doc PendingDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &doc
	s.transcript = nil
}

// Pending returns the pending document and whether one exists.
func (s *Session) Pending() (PendingDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingDocument{}, false
	}
	return *s.pending, true
}

// ClearPending discards the pending document, as happens after a save.
func (s *Session) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// AppendTurn records one chat exchange.
func (s *Session) AppendTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, t)
}

// Transcript returns a copy of the recorded exchanges in order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// ClearTranscript drops the chat history without touching the pending
// document.
func (s *Session) ClearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}
