package types

import "time"

// TicketFilter - параметры выборки заявок для админских списков и экспорта.
type TicketFilter struct {
	Status     string
	Priority   string
	CategoryID uint64
	AssignedTo uint64
	CustomerID uint64
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      uint64
	Offset     uint64
}

// ChatFilter - параметры выборки чат-сессий.
type ChatFilter struct {
	Status     string
	CustomerID uint64
	AdminID    uint64
	Limit      uint64
	Offset     uint64
}
