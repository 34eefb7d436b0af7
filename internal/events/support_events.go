package events

// События поддержки, публикуемые сервисами в шину.
// Слушатели создают уведомления и рассылают их по websocket.

const (
	TicketCreatedEventName       = "ticket.created"
	TicketCustomerReplyEventName = "ticket.customer_reply"
	ChatStartedEventName         = "chat.started"
)

type TicketCreatedEvent struct {
	TicketID      uint64
	TicketNumber  string
	Subject       string
	Priority      string
	CustomerName  string
	CustomerEmail string
}

func (e TicketCreatedEvent) Name() string { return TicketCreatedEventName }

type TicketCustomerReplyEvent struct {
	TicketID     uint64
	TicketNumber string
	Subject      string
	CustomerName string
	Reopened     bool
}

func (e TicketCustomerReplyEvent) Name() string { return TicketCustomerReplyEventName }

type ChatStartedEvent struct {
	ChatSessionID uint64
	SessionCode   string
	CustomerName  string
	FirstMessage  string
}

func (e ChatStartedEvent) Name() string { return ChatStartedEventName }
