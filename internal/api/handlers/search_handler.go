package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okekechris/docuchat/internal/core"
)

const searchResults = 5

type SearchHandler struct {
	store core.VectorStore
}

func NewSearchHandler(store core.VectorStore) *SearchHandler {
	return &SearchHandler{store: store}
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search returns the nearest chunks for a query text.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "no query given")
		return
	}

	res, err := h.store.Query(r.Context(), req.Query, searchResults)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
