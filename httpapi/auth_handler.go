package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"talksy/auth"
	"talksy/domain"
	"talksy/services"
)

const sessionCookie = "jwt"

type AuthHandler struct {
	service services.IAuthService
	log     *slog.Logger
}

func NewAuthHandler(service services.IAuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

// The token travels twice: in the body for API clients and as an
// http-only cookie for browsers.
func setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
	})
}

type sessionResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body auth.SignupRequest
	if !decodeBody(w, r, &body) {
		return
	}

	user, token, err := h.service.Signup(body)
	if err != nil {
		respondError(w, err)
		return
	}

	setSession(w, token)
	respondJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, token, err := h.service.Login(body.Email, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	setSession(w, token)
	respondJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CheckAuth(auth.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName   string `json:"fullName"`
		ProfilePic string `json:"profilePic"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := h.service.UpdateProfile(auth.UserID(r.Context()), body.FullName, body.ProfilePic)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.SearchUsers(r.URL.Query().Get("q"), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if found == nil {
		found = []domain.User{}
	}
	respondJSON(w, http.StatusOK, found)
}
