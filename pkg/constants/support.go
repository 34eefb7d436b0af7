package constants

// Статусы заявок (тикетов).
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusWaiting    = "waiting"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// Приоритеты заявок.
const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

// Статусы чат-сессий.
const (
	ChatStatusActive  = "active"
	ChatStatusWaiting = "waiting"
	ChatStatusClosed  = "closed"
)

// Типы отправителей сообщений.
const (
	SenderTypeCustomer = "customer"
	SenderTypeAdmin    = "admin"
	SenderTypeSystem   = "system"
)

// Роли пользователей.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Массовые операции над заявками.
const (
	BulkActionAssign   = "assign"
	BulkActionStatus   = "status"
	BulkActionPriority = "priority"
	BulkActionCategory = "category"

	// Сентинелы для сброса значения.
	BulkValueUnassign = "unassign"
	BulkValueNone     = "none"
)

// Лимит заявок в одной массовой операции.
const BulkMaxTickets = 100

// Типы уведомлений для админ-панели.
const (
	NotificationTicketCreated = "ticket_created"
	NotificationTicketReply   = "ticket_reply"
	NotificationChatStarted   = "chat_started"
)
