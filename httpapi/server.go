package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"talksy/auth"
	"talksy/contract"
	"talksy/observability"
	"talksy/storage"
)

type Server struct {
	AuthHandler    *AuthHandler
	MessageHandler *MessageHandler
	GroupHandler   *GroupHandler
	SocketHandler  http.Handler
	Tokens         *auth.Tokens
	Registry       contract.IRegistry
	Stats          *observability.Stats
	Media          *storage.MediaStore
	Log            *slog.Logger
}

// Router assembles the full route table. Everything under /api except
// signup and login requires a valid session token.
func (s *Server) Router() *mux.Router {
	root := mux.NewRouter()
	root.Use(s.logRequests)

	root.HandleFunc("/api/auth/signup", s.AuthHandler.Signup).Methods(http.MethodPost)
	root.HandleFunc("/api/auth/login", s.AuthHandler.Login).Methods(http.MethodPost)
	root.HandleFunc("/api/auth/logout", s.AuthHandler.Logout).Methods(http.MethodPost)

	authed := root.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(s.Tokens))
	authed.HandleFunc("/auth/check", s.AuthHandler.CheckAuth).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile", s.AuthHandler.UpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/auth/users/search", s.AuthHandler.SearchUsers).Methods(http.MethodGet)

	authed.HandleFunc("/messages/search", s.MessageHandler.Search).Methods(http.MethodGet)
	authed.HandleFunc("/messages/{userId}", s.MessageHandler.Conversation).Methods(http.MethodGet)
	authed.HandleFunc("/messages/{userId}", s.MessageHandler.SendDirect).Methods(http.MethodPost)

	authed.HandleFunc("/groups", s.GroupHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/groups", s.GroupHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}", s.GroupHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}", s.GroupHandler.Update).Methods(http.MethodPut)
	authed.HandleFunc("/groups/{groupId}", s.GroupHandler.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/groups/{groupId}/members/{userId}", s.GroupHandler.AddMember).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{groupId}/members/{userId}", s.GroupHandler.RemoveMember).Methods(http.MethodDelete)
	authed.HandleFunc("/groups/{groupId}/messages", s.GroupHandler.Messages).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}/messages", s.GroupHandler.SendMessage).Methods(http.MethodPost)

	root.Handle("/ws", s.SocketHandler)
	root.HandleFunc("/media/{file}", s.serveMedia).Methods(http.MethodGet)
	root.HandleFunc("/debug/stats", s.debugStats).Methods(http.MethodGet)

	return root
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	file, err := s.Media.Open(mux.Vars(r)["file"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func (s *Server) debugStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Stats.Snapshot(len(s.Registry.OnlineUsers())))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
