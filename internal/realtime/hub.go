// Package realtime empuja el snapshot completo de eventos por WebSocket a
// los dispositivos conectados. Sin deltas: cada mutación publica la colección
// entera con su número de secuencia y el cliente reemplaza su copia local.
package realtime

import (
	"context"
	"sync"

	"eps-tracker/internal/domain/events"
	"eps-tracker/internal/platform/logger"
)

// Snapshot es el sobre que viaja por el socket. Seq crece en forma monotónica
// por proceso; el cliente descarta snapshots con secuencia vieja.
type Snapshot struct {
	Seq    uint64         `json:"seq"`
	Events []events.Event `json:"events"`
}

type Hub struct {
	log logger.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan Snapshot

	mu      sync.RWMutex
	clients map[*client]bool
	last    *Snapshot // último snapshot publicado, para clientes nuevos
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop{}
	}
	return &Hub{
		log:        log,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Snapshot, 16),
		clients:    make(map[*client]bool),
	}
}

// Run atiende altas, bajas y broadcasts hasta que el contexto se cancele.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.last
			h.mu.Unlock()
			h.log.Debug("ws client connected", map[string]any{"clients": h.ClientCount()})

			// el cliente nuevo arranca con el estado vigente
			if last != nil {
				c.enqueue(*last, h.log)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Debug("ws client disconnected", map[string]any{"clients": h.ClientCount()})

		case snap := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				c.enqueue(snap, h.log)
			}
			h.mu.RUnlock()
		}
	}
}

// Publish implementa events.Notifier. No bloquea al servicio: si el canal
// está lleno se descarta el snapshot intermedio, el siguiente lo supera.
func (h *Hub) Publish(seq uint64, evs []events.Event) {
	snap := Snapshot{Seq: seq, Events: evs}

	h.mu.Lock()
	h.last = &snap
	h.mu.Unlock()

	select {
	case h.broadcast <- snap:
	default:
		h.log.Warn("broadcast channel full, snapshot dropped", map[string]any{"seq": seq})
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
