// Package ws streams battle progress to players over websockets.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

type envelope struct {
	playerID string
	payload  []byte
}

type departure struct {
	client *Client
	// receives true when the player has no connections left
	last chan bool
}

// Hub tracks connected clients per player and fans frames out to them.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	broadcast  chan envelope
	register   chan *Client
	unregister chan departure
	done       chan struct{}
}

// NewHub creates a Hub. Call Run before sending.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan departure),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, set := range h.clients {
			for c := range set {
				close(c.send)
			}
		}
		h.clients = nil
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("websocket hub shutting down")
			return
		case c := <-h.register:
			set, ok := h.clients[c.playerID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.playerID] = set
			}
			set[c] = struct{}{}
			slog.Debug("websocket client connected", "player_id", c.playerID)
		case d := <-h.unregister:
			h.remove(d.client)
			d.last <- len(h.clients[d.client.playerID]) == 0
		case msg := <-h.broadcast:
			for c := range h.clients[msg.playerID] {
				select {
				case c.send <- msg.payload:
				default:
					// slow reader
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	set := h.clients[c.playerID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.playerID)
	}
	slog.Debug("websocket client disconnected", "player_id", c.playerID)
}

// Send delivers frame to every connection of playerID. It is a no-op once
// the hub has stopped.
func (h *Hub) Send(playerID string, frame *Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		slog.Error("failed to encode websocket frame", "type", frame.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- envelope{playerID: playerID, payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// drop unregisters c and reports whether it was the player's last
// connection. It reports false once the hub has stopped.
func (h *Hub) drop(c *Client) bool {
	d := departure{client: c, last: make(chan bool, 1)}
	select {
	case h.unregister <- d:
		return <-d.last
	case <-h.done:
		return false
	}
}
