package handlers

import "net/http"

// Status reports the readiness flags pollers expect. Startup blocks until
// the vector store and extractors are constructed, so by the time the router
// serves traffic both flags are true.
func Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"tokenizer_ready":    true,
		"vector_store_ready": true,
	})
}
