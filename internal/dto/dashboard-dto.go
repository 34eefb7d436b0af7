package dto

type DashboardStatsDTO struct {
	TicketsByStatus   map[string]uint64 `json:"tickets_by_status"`
	TicketsByPriority map[string]uint64 `json:"tickets_by_priority"`
	UrgentCount       uint64            `json:"urgent_count"`
	ActiveChatCount   uint64            `json:"active_chat_count"`
}

// ResolutionStatsDTO - метрики решения за окно времени.
// Показатель resolution_rate смешивает когорты "создано в окне" и
// "решено в окне" - так считает исходная система, не исправлять.
type ResolutionStatsDTO struct {
	From                 string  `json:"from"`
	To                   string  `json:"to"`
	CreatedCount         uint64  `json:"created_count"`
	ResolvedCount        uint64  `json:"resolved_count"`
	ResolutionRate       float64 `json:"resolution_rate"`
	AvgResolutionSeconds float64 `json:"avg_resolution_seconds"`
}
