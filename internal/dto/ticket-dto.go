package dto

type CreateTicketDTO struct {
	Subject     string  `json:"subject" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"required,min=3"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CategoryID  *uint64 `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	OrderID     *uint64 `json:"order_id,omitempty" validate:"omitempty,gt=0"`
	ServiceID   *uint64 `json:"service_id,omitempty" validate:"omitempty,gt=0"`
}

type AddTicketMessageDTO struct {
	Content string `json:"content" validate:"required,min=1"`
}

type AssignTicketDTO struct {
	AdminID uint64 `json:"admin_id" validate:"required,gt=0"`
}

type UpdateTicketStatusDTO struct {
	Status string  `json:"status" validate:"required,oneof=open in_progress waiting resolved closed"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,min=1"`
}

type UpdateTicketDTO struct {
	Subject     *string `json:"subject,omitempty" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=3"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=open in_progress waiting resolved closed"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
	AssignedTo  *uint64 `json:"assigned_to,omitempty"`
}

// BulkUpdateTicketsDTO - одна операция над пачкой заявок.
// Для action=assign значение "unassign" снимает исполнителя,
// для action=category значение "none" убирает категорию.
type BulkUpdateTicketsDTO struct {
	TicketIDs []uint64 `json:"ticket_ids" validate:"required,min=1,max=100,dive,gt=0"`
	Action    string   `json:"action" validate:"required,oneof=assign status priority category"`
	Value     string   `json:"value" validate:"required"`
}

type TicketDTO struct {
	ID                  uint64       `json:"id"`
	TicketNumber        string       `json:"ticket_number"`
	Subject             string       `json:"subject"`
	Description         string       `json:"description"`
	Status              string       `json:"status"`
	Priority            string       `json:"priority"`
	CategoryID          *uint64      `json:"category_id,omitempty"`
	CustomerID          uint64       `json:"customer_id"`
	CustomerEmail       string       `json:"customer_email"`
	CustomerName        string       `json:"customer_name"`
	AssignedTo          *uint64      `json:"assigned_to,omitempty"`
	OrderID             *uint64      `json:"order_id,omitempty"`
	ServiceID           *uint64      `json:"service_id,omitempty"`
	CreatedAt           string       `json:"created_at"`
	UpdatedAt           string       `json:"updated_at"`
	AssignedAt          *string      `json:"assigned_at,omitempty"`
	ResolvedAt          *string      `json:"resolved_at,omitempty"`
	ClosedAt            *string      `json:"closed_at,omitempty"`
	LastCustomerReplyAt *string      `json:"last_customer_reply_at,omitempty"`
	LastAdminReplyAt    *string      `json:"last_admin_reply_at,omitempty"`
	Messages            []MessageDTO `json:"messages,omitempty"`
}

type BulkUpdateResultDTO struct {
	UpdatedCount int64 `json:"updated_count"`
}
