package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Notification struct {
	ID            uint64      `json:"id"`
	Type          string      `json:"type"`
	Title         string      `json:"title"`
	Body          string      `json:"body"`
	TicketID      null.Uint64 `json:"ticket_id"`
	ChatSessionID null.Uint64 `json:"chat_session_id"`
	IsRead        bool        `json:"is_read"`
	ReadAt        null.Time   `json:"read_at"`
	CreatedAt     time.Time   `json:"created_at"`
}
