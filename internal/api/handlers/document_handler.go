package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okekechris/docuchat/internal/core"
	"github.com/okekechris/docuchat/internal/core/filestore"
	"github.com/okekechris/docuchat/internal/core/ingest"
)

// TaskQueue is the slice of the dispatcher the handlers need.
type TaskQueue interface {
	Enqueue(path string) string
	Status(id string) (ingest.TaskStatus, bool)
}

// Deleter removes a document and everything derived from it.
type Deleter interface {
	Delete(ctx context.Context, path string) error
}

type DocumentHandler struct {
	files        *filestore.Store
	store        core.VectorStore
	queue        TaskQueue
	deleter      Deleter
	maxFileBytes int64
}

func NewDocumentHandler(files *filestore.Store, store core.VectorStore, queue TaskQueue, deleter Deleter, maxFileBytes int64) *DocumentHandler {
	return &DocumentHandler{files: files, store: store, queue: queue, deleter: deleter, maxFileBytes: maxFileBytes}
}

// Upload accepts a multipart file, stores it and schedules an asynchronous
// ingestion job. Re-uploading a path that already has chunks is rejected
// here so concurrent add+delete on one source never happens.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no selected file")
		return
	}

	path := h.files.UploadPath(header.Filename)
	exists, err := h.store.HasSource(r.Context(), path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "document already ingested")
		return
	}

	if _, err := h.files.SaveUpload(header.Filename, file); err != nil {
		log.Printf("DocumentHandler: save %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	taskID := h.queue.Enqueue(path)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"message": "file accepted for processing",
	})
}

// TaskStatus reports the state of an ingestion job. Unknown ids read as
// PENDING, matching how pollers treat jobs that have not started yet.
func (h *DocumentHandler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, ok := h.queue.Status(id)
	if !ok {
		st = ingest.TaskStatus{State: ingest.TaskPending, Status: "unknown or not yet started"}
	}
	writeJSON(w, http.StatusOK, st)
}

// List returns the filenames currently in the upload store.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.files.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// Delete removes the uploaded file, its derived artifacts and every chunk
// embedded from it.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !h.files.Exists(filename) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if err := h.deleter.Delete(r.Context(), h.files.UploadPath(filename)); err != nil {
		log.Printf("DocumentHandler: delete %s: %v", filename, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted successfully"})
}
