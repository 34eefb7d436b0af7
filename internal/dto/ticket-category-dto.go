package dto

type CreateTicketCategoryDTO struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Color     *string `json:"color,omitempty" validate:"omitempty,max=20"`
	IsActive  *bool   `json:"is_active,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

type UpdateTicketCategoryDTO struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Color     *string `json:"color,omitempty" validate:"omitempty,max=20"`
	IsActive  *bool   `json:"is_active,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

type TicketCategoryDTO struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Color     *string `json:"color,omitempty"`
	IsActive  bool    `json:"is_active"`
	SortOrder int     `json:"sort_order"`
}
