package rest

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"lungrisk/internal/services/annotation"
	"lungrisk/pkg/errors"
)

// multipartMemory is the share of an upload kept in memory before spilling to temp files.
const multipartMemory = 8 << 20

type uploadResponse struct {
	Message   string               `json:"message"`
	Results   []annotation.Outcome `json:"results"`
	ModelUsed string               `json:"model_used"`
}

// handleUpload processes every file of the "files" field with the model from
// the optional "model" field.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.respondMessage(w, http.StatusBadRequest, "No files provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers, ok := r.MultipartForm.File["files"]
	if !ok || len(headers) == 0 {
		h.respondMessage(w, http.StatusBadRequest, "No files provided")
		return
	}
	if allUnnamed(headers) {
		h.respondMessage(w, http.StatusBadRequest, "No files selected")
		return
	}

	model := r.FormValue("model")
	if model == "" {
		model = h.predictions.DefaultModel()
	}

	docs := make([]annotation.Document, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			h.respondError(w, r, err, "Server error: ")
			return
		}
		docs = append(docs, annotation.Document{Filename: fh.Filename, Content: content})
	}

	results := h.documents.ProcessBatch(r.Context(), docs, model)
	h.respondJSON(w, http.StatusOK, uploadResponse{
		Message:   fmt.Sprintf("Processed %d files", len(results)),
		Results:   results,
		ModelUsed: model,
	})
}

func allUnnamed(headers []*multipart.FileHeader) bool {
	for _, fh := range headers {
		if fh.Filename != "" {
			return false
		}
	}
	return true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open upload %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read upload %s", fh.Filename)
	}
	return data, nil
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")

	f, err := h.documents.Open(name)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			h.respondMessage(w, http.StatusNotFound, "File not found")
			return
		}
		h.respondError(w, r, err, "Server error: ")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondError(w, r, err, "Server error: ")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", attachment(name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// attachment renders an RFC 6266 Content-Disposition value for name.
func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
