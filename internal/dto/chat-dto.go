package dto

type StartChatDTO struct {
	Subject string `json:"subject,omitempty" validate:"omitempty,max=255"`
	Message string `json:"message" validate:"required,min=1"`
}

type SendChatMessageDTO struct {
	Content string `json:"content" validate:"required,min=1"`
}

type AdminSendChatMessageDTO struct {
	Content    string `json:"content" validate:"required,min=1"`
	IsInternal bool   `json:"is_internal"`
}

type ChatSessionDTO struct {
	ID             uint64       `json:"id"`
	SessionCode    string       `json:"session_code"`
	Subject        *string      `json:"subject,omitempty"`
	CustomerID     uint64       `json:"customer_id"`
	CustomerEmail  string       `json:"customer_email"`
	CustomerName   string       `json:"customer_name"`
	AdminID        *uint64      `json:"admin_id,omitempty"`
	Status         string       `json:"status"`
	StartedAt      string       `json:"started_at"`
	LastActivityAt string       `json:"last_activity_at"`
	AdminJoinedAt  *string      `json:"admin_joined_at,omitempty"`
	EndedAt        *string      `json:"ended_at,omitempty"`
	Messages       []MessageDTO `json:"messages,omitempty"`
}
