package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Ticket struct {
	ID                  uint64      `json:"id"`
	TicketNumber        string      `json:"ticket_number"`
	Subject             string      `json:"subject"`
	Description         string      `json:"description"`
	Status              string      `json:"status"`
	Priority            string      `json:"priority"`
	CategoryID          null.Uint64 `json:"category_id"`
	CustomerID          uint64      `json:"customer_id"`
	CustomerEmail       string      `json:"customer_email"`
	CustomerName        string      `json:"customer_name"`
	AssignedTo          null.Uint64 `json:"assigned_to"`
	OrderID             null.Uint64 `json:"order_id"`
	ServiceID           null.Uint64 `json:"service_id"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	AssignedAt          null.Time   `json:"assigned_at"`
	ResolvedAt          null.Time   `json:"resolved_at"`
	ClosedAt            null.Time   `json:"closed_at"`
	LastCustomerReplyAt null.Time   `json:"last_customer_reply_at"`
	LastAdminReplyAt    null.Time   `json:"last_admin_reply_at"`
}
