package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"eps-tracker/internal/platform/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// snapshots intermedios se pueden perder, el último siempre llega
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// servicio personal en red propia, sin chequeo de origen
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Snapshot
}

// ServeHTTP sube la conexión a WebSocket y la registra en el hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", map[string]any{"err": err.Error()})
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan Snapshot, sendBuffer)}
	h.register <- c

	go c.writeLoop()
	go c.readLoop()
}

func (c *client) enqueue(snap Snapshot, log logger.Logger) {
	select {
	case c.send <- snap:
	default:
		log.Warn("ws send buffer full, snapshot dropped", map[string]any{"seq": snap.Seq})
	}
}

// readLoop descarta lo que mande el cliente (el canal es de bajada) y
// sostiene el pong handler. Al cortarse la conexión desregistra.
func (c *client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case snap, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(snap); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
