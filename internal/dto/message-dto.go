package dto

type MessageDTO struct {
	ID          uint64  `json:"id"`
	Content     string  `json:"content"`
	SenderType  string  `json:"sender_type"`
	IsInternal  bool    `json:"is_internal"`
	IsAutomated bool    `json:"is_automated"`
	SenderID    *uint64 `json:"sender_id,omitempty"`
	SenderEmail *string `json:"sender_email,omitempty"`
	SenderName  *string `json:"sender_name,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
