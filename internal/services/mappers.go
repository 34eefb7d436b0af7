package services

import (
	"time"

	"github.com/aarondl/null/v8"

	"support-system/internal/dto"
	"support-system/internal/entities"
)

const dateTimeFormat = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.Local().Format(dateTimeFormat)
}

func nullTimeToStringPtr(t null.Time) *string {
	if !t.Valid {
		return nil
	}
	formatted := formatTime(t.Time)
	return &formatted
}

func toMessageDTO(m entities.Message) dto.MessageDTO {
	return dto.MessageDTO{
		ID:          m.ID,
		Content:     m.Content,
		SenderType:  m.SenderType,
		IsInternal:  m.IsInternal,
		IsAutomated: m.IsAutomated,
		SenderID:    m.SenderID.Ptr(),
		SenderEmail: m.SenderEmail.Ptr(),
		SenderName:  m.SenderName.Ptr(),
		CreatedAt:   formatTime(m.CreatedAt),
	}
}

func toMessageDTOs(messages []entities.Message) []dto.MessageDTO {
	result := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		result = append(result, toMessageDTO(m))
	}
	return result
}

func toTicketDTO(t *entities.Ticket, messages []entities.Message) *dto.TicketDTO {
	return &dto.TicketDTO{
		ID:                  t.ID,
		TicketNumber:        t.TicketNumber,
		Subject:             t.Subject,
		Description:         t.Description,
		Status:              t.Status,
		Priority:            t.Priority,
		CategoryID:          t.CategoryID.Ptr(),
		CustomerID:          t.CustomerID,
		CustomerEmail:       t.CustomerEmail,
		CustomerName:        t.CustomerName,
		AssignedTo:          t.AssignedTo.Ptr(),
		OrderID:             t.OrderID.Ptr(),
		ServiceID:           t.ServiceID.Ptr(),
		CreatedAt:           formatTime(t.CreatedAt),
		UpdatedAt:           formatTime(t.UpdatedAt),
		AssignedAt:          nullTimeToStringPtr(t.AssignedAt),
		ResolvedAt:          nullTimeToStringPtr(t.ResolvedAt),
		ClosedAt:            nullTimeToStringPtr(t.ClosedAt),
		LastCustomerReplyAt: nullTimeToStringPtr(t.LastCustomerReplyAt),
		LastAdminReplyAt:    nullTimeToStringPtr(t.LastAdminReplyAt),
		Messages:            toMessageDTOs(messages),
	}
}

func toTicketDTOs(tickets []entities.Ticket) []dto.TicketDTO {
	result := make([]dto.TicketDTO, 0, len(tickets))
	for i := range tickets {
		result = append(result, *toTicketDTO(&tickets[i], nil))
	}
	return result
}

func toChatSessionDTO(s *entities.ChatSession, messages []entities.Message) *dto.ChatSessionDTO {
	return &dto.ChatSessionDTO{
		ID:             s.ID,
		SessionCode:    s.SessionCode,
		Subject:        s.Subject.Ptr(),
		CustomerID:     s.CustomerID,
		CustomerEmail:  s.CustomerEmail,
		CustomerName:   s.CustomerName,
		AdminID:        s.AdminID.Ptr(),
		Status:         s.Status,
		StartedAt:      formatTime(s.StartedAt),
		LastActivityAt: formatTime(s.LastActivityAt),
		AdminJoinedAt:  nullTimeToStringPtr(s.AdminJoinedAt),
		EndedAt:        nullTimeToStringPtr(s.EndedAt),
		Messages:       toMessageDTOs(messages),
	}
}

func toChatSessionDTOs(sessions []entities.ChatSession) []dto.ChatSessionDTO {
	result := make([]dto.ChatSessionDTO, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toChatSessionDTO(&sessions[i], nil))
	}
	return result
}

func toNotificationDTO(n entities.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:            n.ID,
		Type:          n.Type,
		Title:         n.Title,
		Body:          n.Body,
		TicketID:      n.TicketID.Ptr(),
		ChatSessionID: n.ChatSessionID.Ptr(),
		IsRead:        n.IsRead,
		ReadAt:        nullTimeToStringPtr(n.ReadAt),
		CreatedAt:     formatTime(n.CreatedAt),
	}
}

func toTicketCategoryDTO(c entities.TicketCategory) dto.TicketCategoryDTO {
	return dto.TicketCategoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color.Ptr(),
		IsActive:  c.IsActive,
		SortOrder: c.SortOrder,
	}
}
