package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub управляет всеми клиентами и рассылкой сообщений.
// К хабу подключаются только администраторы (см. роуты).
type Hub struct {
	clients     map[*Client]bool
	userClients map[uint64][]*Client
	Register    chan *Client
	unregister  chan *Client
	broadcast   chan []byte
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				clients := h.userClients[client.UserID]
				for i, c := range clients {
					if c == client {
						h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(h.userClients[client.UserID]) == 0 {
					delete(h.userClients, client.UserID)
				}
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastPayload рассылает конверт с полезной нагрузкой всем подключенным клиентам.
func (h *Hub) BroadcastPayload(payload interface{}, messageType string) error {
	envelope := Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	h.broadcast <- data
	return nil
}

// SendMessageToUser отправляет конверт конкретному пользователю.
func (h *Hub) SendMessageToUser(userID uint64, payload interface{}, messageType string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	envelope := Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- data:
		default:
			log.Printf("переполнен буфер отправки: userID %d", userID)
		}
	}
	return nil
}
