// Package realtime pushes change events to websocket clients.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/venue-booking/utils"
)

// Event types
const (
	EventBookingChange = "booking_change"
	EventTableChange   = "table_change"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ChangeData is the payload of a change event. Clients re-fetch the floor plan
// on receipt; the payload only says what changed.
type ChangeData struct {
	Collection string   `json:"collection"`
	Actions    []string `json:"actions"`
	RecordIDs  []int64  `json:"record_ids"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub menampung semua client websocket (guest dan admin)
type Hub struct {
	clients map[Conn]uint // conn -> user id
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]uint)}
}

// Register -> menambahkan connection milik userID
func (h *Hub) Register(conn Conn, userID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = userID
}

// Unregister -> melepaskan dan menutup connection
func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()

	if ok {
		conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastChange announces that a collection changed.
func (h *Hub) BroadcastChange(event string, data ChangeData) {
	h.Broadcast(Message{Event: event, Data: data})
}

// Broadcast sends msg to every client. Clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	var failed []Conn
	for conn, userID := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("user_id", userID).Printf("Error sending message to client: %v", err)
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		delete(h.clients, conn)
	}
	sent := len(h.clients)
	h.mutex.Unlock()

	for _, conn := range failed {
		conn.Close()
	}
	utils.InfoLogger.Debugf("Broadcast %s to %d clients", msg.Event, sent)
}
