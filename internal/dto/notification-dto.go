package dto

type NotificationDTO struct {
	ID            uint64  `json:"id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Body          string  `json:"body"`
	TicketID      *uint64 `json:"ticket_id,omitempty"`
	ChatSessionID *uint64 `json:"chat_session_id,omitempty"`
	IsRead        bool    `json:"is_read"`
	ReadAt        *string `json:"read_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
