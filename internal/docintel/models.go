package docintel

import (
	"path/filepath"
	"strings"
)

// DefaultModelID is used when a document-type name has no mapping.
const DefaultModelID = "prebuilt-read"

// modelIDs maps the user-facing document-type names to prebuilt model IDs.
var modelIDs = map[string]string{
	"Invoice":          "prebuilt-invoice",
	"Receipt":          "prebuilt-receipt",
	"General Document": DefaultModelID,
	"Layout":           "prebuilt-layout",
}

// ModelID resolves a document-type name to its model ID, falling back to
// prebuilt-read for unknown names.
func ModelID(docType string) string {
	if id, ok := modelIDs[docType]; ok {
		return id
	}
	return DefaultModelID
}

// DocumentTypes returns the supported document-type names.
func DocumentTypes() []string {
	return []string{"Invoice", "Receipt", "General Document", "Layout"}
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ContentTypeFor derives the request content type from the filename
// extension, defaulting to application/octet-stream.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SupportedFile reports whether the filename carries one of the accepted
// upload extensions (pdf, jpg, jpeg, png).
func SupportedFile(filename string) bool {
	_, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}
