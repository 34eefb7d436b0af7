package websocket

import "time"

// Envelope — "конверт" для исходящих сообщений. Тип подсказывает
// фронтенду, как обработать полезную нагрузку.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NotificationPayload - уведомление для "колокольчика" в админ-панели.
type NotificationPayload struct {
	EventID       string    `json:"eventId"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	TicketID      *uint64   `json:"ticketId,omitempty"`
	ChatSessionID *uint64   `json:"chatSessionId,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
