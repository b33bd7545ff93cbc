package ws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"talksy/domain/event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// errSlowConsumer marks a session whose send buffer is full. The frame is
// dropped rather than blocking the caller; the transport's own ping/pong
// timeout will eventually reap the peer if it is truly dead.
var errSlowConsumer = fmt.Errorf("send buffer full, frame dropped")

// errSessionClosed marks a frame handed to a session already past its
// terminal disconnect. Stale fan-out, safe to drop.
var errSessionClosed = fmt.Errorf("session closed, frame dropped")

// Conn adapts one gorilla websocket connection into a live-layer session.
// All outbound frames funnel through the send channel and a single writer
// goroutine, which is what preserves per-connection event order.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	log  *slog.Logger
}

func newConn(ws *websocket.Conn, log *slog.Logger) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// close wakes the write pump so it sends the close frame and exits now
// instead of idling until its next ping. Called exactly once, after the
// terminal disconnect.
func (c *Conn) close() {
	close(c.done)
}

// Consume implements contract.Session. It never blocks on the peer.
func (c *Conn) Consume(_ context.Context, e event.Event) error {
	data, err := encodeFrame(e)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return errSessionClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSlowConsumer
	}
}

// writePump drains the send channel onto the socket and keeps the peer
// alive with pings. One writer per connection; gorilla forbids concurrent
// writers.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds inbound frames to the handler until the transport dies.
// Normal close, error, and timeout all end here identically; the caller
// runs the terminal disconnect exactly once when this returns.
func (c *Conn) readPump(handle func(data []byte)) {
	defer c.ws.Close()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Debug("websocket read failed", "error", err)
			}
			return
		}
		handle(data)
	}
}
