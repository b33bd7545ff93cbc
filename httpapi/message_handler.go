package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"talksy/auth"
	"talksy/domain"
	"talksy/search"
	"talksy/services"
)

type MessageHandler struct {
	service services.IChatService
	log     *slog.Logger
}

func NewMessageHandler(service services.IChatService, log *slog.Logger) *MessageHandler {
	return &MessageHandler{service: service, log: log}
}

type messagePage struct {
	Messages []domain.Message `json:"messages"`
	Cursor   *string          `json:"cursor,omitempty"`
}

// Conversation returns the direct history with another user, newest
// first, one page per call. The cursor from a response feeds the next
// request.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	otherID := mux.Vars(r)["userId"]

	messages, cursor, err := h.service.Conversation(auth.UserID(r.Context()), otherID, cursorParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	respondJSON(w, http.StatusOK, messagePage{Messages: messages, Cursor: cursor})
}

func (h *MessageHandler) SendDirect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	msg, err := h.service.SendDirect(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["userId"], body.Text, body.Image)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// Search answers scoped full-text queries: ?with= for a direct
// conversation, ?group= for a group the caller is a member of.
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var hits []search.Hit
	var err error
	if groupID := query.Get("group"); groupID != "" {
		hits, err = h.service.SearchGroup(r.Context(), auth.UserID(r.Context()), query.Get("q"), groupID)
	} else {
		hits, err = h.service.Search(r.Context(), auth.UserID(r.Context()), query.Get("q"), query.Get("with"))
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	respondJSON(w, http.StatusOK, hits)
}

func cursorParam(r *http.Request) *string {
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		return &raw
	}
	return nil
}
