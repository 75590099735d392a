package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRecord is one processed document as persisted: the upload
// identity, the OCR text, and the extracted fields serialized as a JSON
// blob. Records are append-only; there is no update or delete.
type DocumentRecord struct {
	ID              int64     `json:"id"`
	Filename        string    `json:"filename"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
	RawText         string    `json:"raw_text"`
	StructuredData  string    `json:"structured_data"` // JSON object stored as text
	ModelType       string    `json:"model_type"`
	FileSize        int64     `json:"file_size"`
}
