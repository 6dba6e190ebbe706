package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// conn is a single subscriber connection.
type conn struct {
	hub  *Hub
	ws   *websocket.Conn
	send chan []byte
}

// Handler returns an HTTP handler that upgrades the request to a WebSocket
// and streams hub events until the peer disconnects.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // API is origin-agnostic, same as the REST surface
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		c := &conn{hub: hub, ws: ws, send: make(chan []byte, sendBufferSize)}
		c.run(r.Context())
	}
}

// run registers the connection, pumps outgoing events, and blocks until the
// peer goes away. Incoming frames are read and discarded; subscribers only
// listen.
func (c *conn) run(ctx context.Context) {
	c.hub.register(c)
	defer c.hub.unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)

	for {
		if _, _, err := c.ws.Read(ctx); err != nil {
			return
		}
	}
}

func (c *conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
