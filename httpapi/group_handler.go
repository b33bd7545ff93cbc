package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"talksy/auth"
	"talksy/domain"
	"talksy/services"
)

type GroupHandler struct {
	groups services.IGroupService
	chat   services.IChatService
	log    *slog.Logger
}

func NewGroupHandler(groups services.IGroupService, chat services.IChatService, log *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, chat: chat, log: log}
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		GroupImage  string   `json:"groupImage"`
		Members     []string `json:"members"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), auth.UserID(r.Context()),
		body.Name, body.Description, body.GroupImage, body.Members)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.GroupsForUser(auth.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if groups == nil {
		groups = []domain.Group{}
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(auth.UserID(r.Context()), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		GroupImage  string `json:"groupImage"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	group, err := h.groups.UpdateGroup(r.Context(), auth.UserID(r.Context()),
		mux.Vars(r)["groupId"], body.Name, body.Description, body.GroupImage)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeleteGroup(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["groupId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "group deleted"})
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group, err := h.groups.AddMember(r.Context(), auth.UserID(r.Context()), vars["groupId"], vars["userId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group, err := h.groups.RemoveMember(r.Context(), auth.UserID(r.Context()), vars["groupId"], vars["userId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, cursor, err := h.chat.GroupConversation(auth.UserID(r.Context()), mux.Vars(r)["groupId"], cursorParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	respondJSON(w, http.StatusOK, messagePage{Messages: messages, Cursor: cursor})
}

func (h *GroupHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	msg, err := h.chat.SendGroup(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["groupId"], body.Text, body.Image)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}
