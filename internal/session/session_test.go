package session

import (
	"testing"

	"findoc/internal/extract"
)

func TestPendingLifecycle(t *testing.T) {
	s := New()

	if _, ok := s.Pending(); ok {
		t.Fatal("fresh session should have no pending document")
	}

	s.SetPending(PendingDocument{
		Filename:  "invoice.pdf",
		RawText:   "INVOICE",
		Fields:    map[string]extract.FieldValue{"Total": extract.Currency{Amount: 10, CurrencyCode: "USD"}},
		ModelType: "Invoice",
		FileSize:  100,
	})

	doc, ok := s.Pending()
	if !ok {
		t.Fatal("pending document missing after SetPending")
	}
	if doc.Filename != "invoice.pdf" || doc.ModelType != "Invoice" {
		t.Errorf("doc = %+v", doc)
	}

	s.ClearPending()
	if _, ok := s.Pending(); ok {
		t.Error("pending document should be gone after ClearPending")
	}
}

func TestSetPendingReplacesDocument(t *testing.T) {
	s := New()
	s.SetPending(PendingDocument{Filename: "first.pdf"})
	s.SetPending(PendingDocument{Filename: "second.pdf"})

	doc, _ := s.Pending()
	if doc.Filename != "second.pdf" {
		t.Errorf("Filename = %q, want second.pdf", doc.Filename)
	}
}

func TestTranscript(t *testing.T) {
	s := New()

	if got := s.Transcript(); len(got) != 0 {
		t.Fatalf("fresh transcript = %v, want empty", got)
	}

	s.AppendTurn(Turn{Question: "q1", Answer: "a1"})
	s.AppendTurn(Turn{Question: "q2", Answer: "a2"})

	turns := s.Transcript()
	if len(turns) != 2 || turns[0].Question != "q1" || turns[1].Question != "q2" {
		t.Errorf("transcript = %+v", turns)
	}

	// The returned slice is a copy.
	turns[0].Question = "mutated"
	if s.Transcript()[0].Question != "q1" {
		t.Error("Transcript() must return a copy")
	}

	s.ClearTranscript()
	if len(s.Transcript()) != 0 {
		t.Error("transcript should be empty after ClearTranscript")
	}
}

func TestSetPendingResetsTranscript(t *testing.T) {
	s := New()
	s.SetPending(PendingDocument{Filename: "a.pdf"})
	s.AppendTurn(Turn{Question: "q", Answer: "a"})

	s.SetPending(PendingDocument{Filename: "b.pdf"})
	if len(s.Transcript()) != 0 {
		t.Error("analyzing a new document must reset the transcript")
	}
}

func TestClearTranscriptKeepsPending(t *testing.T) {
	s := New()
	s.SetPending(PendingDocument{Filename: "a.pdf"})
	s.AppendTurn(Turn{Question: "q", Answer: "a"})
	s.ClearTranscript()

	if _, ok := s.Pending(); !ok {
		t.Error("clearing the transcript must not drop the pending document")
	}
}
