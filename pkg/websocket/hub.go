package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"gotransit/internal/models"
)

// Hub fans booking state snapshots out to the riders watching a journey.
// The engine only ever pushes copies; clients cannot write state back.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
}

type Message struct {
	Type      string      `json:"type"`
	JourneyID string      `json:"journey_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// BroadcastBookingUpdate pushes a booking snapshot to everyone watching the
// journey's room.
func (h *Hub) BroadcastBookingUpdate(journeyID string, set *models.BookingSet) {
	message := Message{
		Type:      "booking_update",
		JourneyID: journeyID,
		Timestamp: time.Now().Unix(),
		Data:      set,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling booking update: %v", err)
		return
	}

	h.broadcast <- payload
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, journeyRoom(client.JourneyID))

	welcome := Message{
		Type:      "welcome",
		JourneyID: client.JourneyID,
		Timestamp: time.Now().Unix(),
		Data:      map[string]interface{}{"message": "Connected successfully"},
	}

	h.sendToClient(client, welcome)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		for roomID, room := range h.rooms {
			if _, exists := room[client]; exists {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	if msg.JourneyID != "" {
		h.sendToRoom(journeyRoom(msg.JourneyID), msg)
	}
}

func (h *Hub) sendToRoom(roomID string, message Message) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	for client := range room {
		h.sendToClient(client, message)
	}
}

func (h *Hub) sendToClient(client *Client, message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	select {
	case client.send <- payload:
	default:
		// Slow consumer; drop the message rather than block the hub.
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

func journeyRoom(journeyID string) string {
	return "journey_" + journeyID
}
