package entities

import "github.com/aarondl/null/v8"

type TicketCategory struct {
	ID        uint64      `json:"id"`
	Name      string      `json:"name"`
	Color     null.String `json:"color"`
	IsActive  bool        `json:"is_active"`
	SortOrder int         `json:"sort_order"`
}
