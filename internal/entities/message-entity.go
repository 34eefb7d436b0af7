package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Message - запись в общем append-only журнале сообщений.
// Заполнено ровно одно из полей TicketID / ChatSessionID;
// вызывающий код обязан явно оставить второе пустым.
type Message struct {
	ID            uint64      `json:"id"`
	TicketID      null.Uint64 `json:"ticket_id"`
	ChatSessionID null.Uint64 `json:"chat_session_id"`
	Content       string      `json:"content"`
	SenderType    string      `json:"sender_type"`
	IsInternal    bool        `json:"is_internal"`
	IsAutomated   bool        `json:"is_automated"`
	SenderID      null.Uint64 `json:"sender_id"`
	SenderEmail   null.String `json:"sender_email"`
	SenderName    null.String `json:"sender_name"`
	CreatedAt     time.Time   `json:"created_at"`
}
