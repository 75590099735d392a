package chat

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the assistant's role for document questions.
const SystemPrompt = "You are a financial document assistant. Answer questions " +
	"strictly from the document context provided. If the answer is not in the " +
	"document, say so instead of guessing. Keep answers short and factual."

// BuildPrompt renders the fixed document-context template followed by the
// user's question. Every turn resends the full context; the service keeps no
// state between calls.
func BuildPrompt(filename, rawText, fieldsJSON, question string) string {
	var b strings.Builder
	b.WriteString("Document: ")
	b.WriteString(filename)
	b.WriteString("\n\nExtracted fields (JSON):\n")
	if fieldsJSON == "" {
		fieldsJSON = "{}"
	}
	b.WriteString(fieldsJSON)
	b.WriteString("\n\nDocument text:\n")
	if rawText == "" {
		b.WriteString("(no text extracted)")
	} else {
		b.WriteString(rawText)
	}
	fmt.Fprintf(&b, "\n\nQuestion: %s", question)
	return b.String()
}
