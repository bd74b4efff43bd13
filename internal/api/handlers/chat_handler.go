package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okekechris/docuchat/internal/core"
)

const chatSystemPrompt = "Read the sources and respond to the prompt given by the user."

type ChatHandler struct {
	store core.VectorStore
	llm   core.LLMProvider
}

func NewChatHandler(store core.VectorStore, llm core.LLMProvider) *ChatHandler {
	return &ChatHandler{store: store, llm: llm}
}

type chatRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// Chat retrieves the nearest chunks for the prompt and feeds them as context
// to the chat-completion model. A slow upstream maps to 504, everything else
// upstream to 500.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "no prompt given")
		return
	}

	res, err := h.store.Query(r.Context(), req.Prompt, searchResults)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var sources string
	if len(res.Documents) > 0 {
		sources = strings.Join(res.Documents[0], "\n\n---\n\n")
	}

	answer, err := h.llm.Generate(r.Context(),
		chatSystemPrompt+" Sources: "+sources, req.Prompt)
	if err != nil {
		if errors.Is(err, core.ErrChatTimeout) {
			writeError(w, http.StatusGatewayTimeout, "chat request timed out, the model might be taking too long to generate a response")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": answer})
}
