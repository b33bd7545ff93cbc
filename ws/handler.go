package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"talksy/auth"
	"talksy/contract"
	"talksy/observability"
)

// Handler upgrades HTTP requests to websocket sessions and dispatches
// their inbound signals into the live layer. The token check gates the
// upgrade itself; past that point the live layer trusts the signals as
// asserted (the trust boundary sits below it).
type Handler struct {
	upgrader  websocket.Upgrader
	lifecycle contract.ILifecycle
	presence  contract.IPresence
	router    contract.IRouter
	tokens    *auth.Tokens
	stats     *observability.Stats
	log       *slog.Logger
}

func NewHandler(log *slog.Logger, lifecycle contract.ILifecycle, presence contract.IPresence,
	router contract.IRouter, tokens *auth.Tokens, stats *observability.Stats) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Browser clients are served cross-origin; lock down per deployment.
			},
		},
		lifecycle: lifecycle,
		presence:  presence,
		router:    router,
		tokens:    tokens,
		stats:     stats,
		log:       log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := auth.TokenFromRequest(r)
	if err != nil {
		http.Error(w, "missing session token", http.StatusUnauthorized)
		return
	}
	if _, err = h.tokens.Validate(raw); err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := newConn(socket, h.log)
	h.stats.ConnOpened()
	defer h.stats.ConnClosed()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracked from the first byte: presence broadcasts reach this
	// connection even before it joins.
	h.lifecycle.Connect(ctx, conn)

	go conn.writePump()
	conn.readPump(func(data []byte) {
		h.dispatch(ctx, conn, data)
	})

	// The read pump only returns on terminal disconnect: normal close,
	// error, or idle timeout, all treated identically. Closing the conn
	// afterwards reaps the write pump without waiting out a ping period.
	h.lifecycle.Disconnect(ctx, conn)
	conn.close()
}

func (h *Handler) dispatch(ctx context.Context, conn *Conn, data []byte) {
	sig, ok := decodeSignal(data)
	if !ok {
		h.log.Debug("ignoring malformed or unknown signal")
		return
	}

	switch s := sig.(type) {
	case joinSignal:
		h.lifecycle.Join(ctx, conn, s.UserID)
	case joinGroupSignal:
		h.lifecycle.JoinGroup(ctx, conn, s.GroupID)
	case typingSignal:
		// Routed unchanged to every device of the receiver.
		h.router.Deliver(ctx, s.toEvent(), contract.ToUser(s.ReceiverID))
	case presencePullSignal:
		h.presence.SnapshotTo(ctx, conn)
	}
}
