package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"findoc/internal/docintel"
	"findoc/internal/export"
	"findoc/internal/extract"
	"findoc/internal/session"
	"findoc/internal/storage"
)

// pendingResponse is the JSON shape of an analyzed, not-yet-saved document.
type pendingResponse struct {
	Filename   string          `json:"filename"`
	ModelType  string          `json:"model_type"`
	FileSize   int64           `json:"file_size"`
	RawText    string          `json:"raw_text"`
	Fields     json.RawMessage `json:"fields"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}

func pendingToResponse(doc session.PendingDocument) (pendingResponse, error) {
	encoded, err := extract.EncodeFields(doc.Fields)
	if err != nil {
		return pendingResponse{}, err
	}
	return pendingResponse{
		Filename:   doc.Filename,
		ModelType:  doc.ModelType,
		FileSize:   doc.FileSize,
		RawText:    doc.RawText,
		Fields:     encoded,
		AnalyzedAt: doc.AnalyzedAt,
	}, nil
}

func handleAnalyze(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required: %v", err)
			return
		}
		defer file.Close()

		if !docintel.SupportedFile(header.Filename) {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"unsupported file type %q: only pdf, jpg, jpeg, and png are accepted", header.Filename)
			return
		}

		modelType := r.FormValue("model_type")
		if modelType == "" {
			modelType = "Invoice"
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading upload: %v", err)
			return
		}

		result, err := deps.Analyzer.Analyze(r.Context(),
			docintel.ModelID(modelType), docintel.ContentTypeFor(header.Filename), content)
		if err != nil {
			var se *docintel.ServiceError
			if errors.As(err, &se) {
				httpError(w, http.StatusBadGateway, "service_error", "%s", se.Error())
				return
			}
			httpError(w, http.StatusBadGateway, "api_error", "processing failed: %v", err)
			return
		}

		rawText, fields := extract.Normalize(result)
		doc := session.PendingDocument{
			Filename:   header.Filename,
			RawText:    rawText,
			Fields:     fields,
			ModelType:  modelType,
			FileSize:   int64(len(content)),
			AnalyzedAt: time.Now().UTC(),
		}
		deps.Session.SetPending(doc)

		resp, err := pendingToResponse(doc)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "encoding fields: %v", err)
			return
		}
		writeJSON(w, resp)
	}
}

func handlePending(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := deps.Session.Pending()
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no document has been analyzed")
			return
		}

		resp, err := pendingToResponse(doc)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "encoding fields: %v", err)
			return
		}
		writeJSON(w, resp)
	}
}

// saveResponse reports a save attempt as a boolean plus message; a store
// failure is an outcome here, not an HTTP error.
type saveResponse struct {
	Saved   bool   `json:"saved"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

func handleSave(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := deps.Session.Pending()
		if !ok {
			httpError(w, http.StatusConflict, "invalid_request_error", "no pending document to save")
			return
		}

		encoded, err := extract.EncodeFields(doc.Fields)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "encoding fields: %v", err)
			return
		}

		id, err := deps.Store.SaveDocument(storage.DocumentRecord{
			Filename:       doc.Filename,
			RawText:        doc.RawText,
			StructuredData: string(encoded),
			ModelType:      doc.ModelType,
			FileSize:       doc.FileSize,
		})
		if err != nil {
			writeJSON(w, saveResponse{Saved: false, Message: fmt.Sprintf("database save error: %v", err)})
			return
		}

		deps.Session.ClearPending()
		writeJSON(w, saveResponse{Saved: true, ID: id, Message: "Data saved successfully!"})
	}
}

// documentResponse mirrors DocumentRecord with the stored field blob exposed
// as raw JSON.
type documentResponse struct {
	ID              int64           `json:"id"`
	Filename        string          `json:"filename"`
	UploadTimestamp time.Time       `json:"upload_timestamp"`
	RawText         string          `json:"raw_text"`
	StructuredData  json.RawMessage `json:"structured_data"`
	ModelType       string          `json:"model_type"`
	FileSize        int64           `json:"file_size"`
}

func toDocumentResponse(rec storage.DocumentRecord) documentResponse {
	blob := json.RawMessage(rec.StructuredData)
	if !json.Valid(blob) {
		// Surface unreadable blobs as a JSON string rather than break the
		// whole listing.
		quoted, _ := json.Marshal(rec.StructuredData)
		blob = quoted
	}
	return documentResponse{
		ID:              rec.ID,
		Filename:        rec.Filename,
		UploadTimestamp: rec.UploadTimestamp,
		RawText:         rec.RawText,
		StructuredData:  blob,
		ModelType:       rec.ModelType,
		FileSize:        rec.FileSize,
	}
}

func handleListDocuments(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.ListDocuments()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list documents: %v", err)
			return
		}

		resp := make([]documentResponse, len(records))
		for i, rec := range records {
			resp[i] = toDocumentResponse(rec)
		}
		writeJSON(w, resp)
	}
}

func handleCount(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{"count": deps.Store.CountDocuments()})
	}
}

func exportFilename(ext string) string {
	return "financial_documents_export_" + time.Now().Format("20060102_150405") + "." + ext
}

func handleExportCSV(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.ListDocuments()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read documents: %v", err)
			return
		}

		rows := export.Flatten(records)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("csv")))
		if err := export.WriteCSV(w, rows); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "writing export: %v", err)
		}
	}
}

func handleExportXLSX(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.ListDocuments()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read documents: %v", err)
			return
		}

		data, err := export.WriteXLSX(export.Flatten(records))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "building workbook: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("xlsx")))
		w.Write(data)
	}
}
