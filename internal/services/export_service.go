package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"support-system/internal/entities"
	"support-system/internal/repositories"
	"support-system/pkg/config"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/types"
)

// Форматы выгрузки заявок.
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
	ExportFormatXLSX = "xlsx"
)

var exportHeader = []string{
	"Ticket Number", "Subject", "Description", "Status", "Priority",
	"Customer Email", "Customer Name", "Category", "Assigned To",
	"Created At", "Updated At", "Resolved At", "Closed At",
}

type ExportResult struct {
	Data        []byte
	ContentType string
	FileName    string
}

type ExportServiceInterface interface {
	ExportTickets(ctx context.Context, filter types.TicketFilter, format string) (*ExportResult, error)
}

type ExportService struct {
	ticketRepo   repositories.TicketRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	categoryRepo repositories.TicketCategoryRepositoryInterface
	cfg          *config.ExportConfig
	logger       *zap.Logger
}

func NewExportService(
	ticketRepo repositories.TicketRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	categoryRepo repositories.TicketCategoryRepositoryInterface,
	cfg *config.ExportConfig,
	logger *zap.Logger,
) ExportServiceInterface {
	return &ExportService{
		ticketRepo:   ticketRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

type exportRow struct {
	TicketNumber  string `json:"ticket_number"`
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	Category      string `json:"category"`
	AssignedTo    string `json:"assigned_to"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	ResolvedAt    string `json:"resolved_at"`
	ClosedAt      string `json:"closed_at"`
}

// ExportTickets материализует отфильтрованный набор заявок целиком в
// памяти и кодирует его в запрошенный формат. Стриминга нет.
func (s *ExportService) ExportTickets(ctx context.Context, filter types.TicketFilter, format string) (*ExportResult, error) {
	filter.Limit = s.cfg.MaxRows
	filter.Offset = 0

	tickets, _, err := s.ticketRepo.GetTickets(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := s.buildRows(ctx, tickets)

	stamp := time.Now().Format("20060102-150405")
	switch format {
	case ExportFormatCSV, "":
		return &ExportResult{
			Data:        []byte(renderCSV(rows)),
			ContentType: "text/csv",
			FileName:    fmt.Sprintf("tickets-%s.csv", stamp),
		}, nil
	case ExportFormatJSON:
		data, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка кодирования выгрузки в JSON: %w", err)
		}
		return &ExportResult{
			Data:        data,
			ContentType: "application/json",
			FileName:    fmt.Sprintf("tickets-%s.json", stamp),
		}, nil
	case ExportFormatXLSX:
		data, err := renderXLSX(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка формирования XLSX: %w", err)
		}
		return &ExportResult{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			FileName:    fmt.Sprintf("tickets-%s.xlsx", stamp),
		}, nil
	}
	return nil, apperrors.ErrBadRequest
}

// buildRows подставляет имена исполнителей и категорий дополнительными
// запросами с мемоизацией. Неразрешимые ссылки оставляют поле пустым.
func (s *ExportService) buildRows(ctx context.Context, tickets []entities.Ticket) []exportRow {
	adminNames := make(map[uint64]string)
	categoryNames := make(map[uint64]string)

	resolveAdmin := func(id null.Uint64) string {
		if !id.Valid {
			return ""
		}
		if name, ok := adminNames[id.Uint64]; ok {
			return name
		}
		name := ""
		if user, err := s.userRepo.FindByID(ctx, id.Uint64); err == nil {
			name = user.Name
		} else {
			s.logger.Warn("не удалось разрешить имя исполнителя для выгрузки",
				zap.Uint64("admin_id", id.Uint64), zap.Error(err))
		}
		adminNames[id.Uint64] = name
		return name
	}
	resolveCategory := func(id null.Uint64) string {
		if !id.Valid {
			return ""
		}
		if name, ok := categoryNames[id.Uint64]; ok {
			return name
		}
		name := ""
		if category, err := s.categoryRepo.FindTicketCategory(ctx, id.Uint64); err == nil {
			name = category.Name
		} else {
			s.logger.Warn("не удалось разрешить категорию для выгрузки",
				zap.Uint64("category_id", id.Uint64), zap.Error(err))
		}
		categoryNames[id.Uint64] = name
		return name
	}

	nullTimeToString := func(t null.Time) string {
		if !t.Valid {
			return ""
		}
		return formatTime(t.Time)
	}

	rows := make([]exportRow, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		rows = append(rows, exportRow{
			TicketNumber:  t.TicketNumber,
			Subject:       t.Subject,
			Description:   t.Description,
			Status:        t.Status,
			Priority:      t.Priority,
			CustomerEmail: t.CustomerEmail,
			CustomerName:  t.CustomerName,
			Category:      resolveCategory(t.CategoryID),
			AssignedTo:    resolveAdmin(t.AssignedTo),
			CreatedAt:     formatTime(t.CreatedAt),
			UpdatedAt:     formatTime(t.UpdatedAt),
			ResolvedAt:    nullTimeToString(t.ResolvedAt),
			ClosedAt:      nullTimeToString(t.ClosedAt),
		})
	}
	return rows
}

// quoteCSVField - минимальное экранирование: поле оборачивается в
// кавычки, внутренние кавычки удваиваются. Применяется только к
// свободному тексту (тема и описание), остальные поля пишутся как
// есть.
func quoteCSVField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func renderCSV(rows []exportRow) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, ","))
	b.WriteString("\n")

	for _, row := range rows {
		fields := []string{
			row.TicketNumber,
			quoteCSVField(row.Subject),
			quoteCSVField(row.Description),
			row.Status,
			row.Priority,
			row.CustomerEmail,
			row.CustomerName,
			row.Category,
			row.AssignedTo,
			row.CreatedAt,
			row.UpdatedAt,
			row.ResolvedAt,
			row.ClosedAt,
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func renderXLSX(rows []exportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			row.TicketNumber, row.Subject, row.Description, row.Status, row.Priority,
			row.CustomerEmail, row.CustomerName, row.Category, row.AssignedTo,
			row.CreatedAt, row.UpdatedAt, row.ResolvedAt, row.ClosedAt,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
