package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type ChatSession struct {
	ID             uint64      `json:"id"`
	SessionCode    string      `json:"session_code"`
	Subject        null.String `json:"subject"`
	CustomerID     uint64      `json:"customer_id"`
	CustomerEmail  string      `json:"customer_email"`
	CustomerName   string      `json:"customer_name"`
	AdminID        null.Uint64 `json:"admin_id"`
	Status         string      `json:"status"`
	StartedAt      time.Time   `json:"started_at"`
	LastActivityAt time.Time   `json:"last_activity_at"`
	AdminJoinedAt  null.Time   `json:"admin_joined_at"`
	EndedAt        null.Time   `json:"ended_at"`
}
