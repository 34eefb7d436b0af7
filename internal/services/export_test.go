package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"support-system/internal/entities"
	"support-system/pkg/config"
	"support-system/pkg/constants"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/types"
)

func ticketFilterForTest() types.TicketFilter {
	return types.TicketFilter{}
}

const wantCSVHeader = "Ticket Number,Subject,Description,Status,Priority,Customer Email,Customer Name,Category,Assigned To,Created At,Updated At,Resolved At,Closed At"

func newExportServiceForTest(ticketRepo *fakeTicketRepo) ExportServiceInterface {
	userRepo := newFakeUserRepo(entities.User{ID: 42, Email: "admin@example.com", Name: "Мария Админ", Role: constants.RoleAdmin})
	categoryRepo := newFakeCategoryRepo(entities.TicketCategory{ID: 3, Name: "Оплата", IsActive: true})
	cfg := &config.ExportConfig{MaxRows: 10000}
	return NewExportService(ticketRepo, userRepo, categoryRepo, cfg, zap.NewNop())
}

func TestExportTicketsCSV(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	seedTicket(t, ticketRepo, func(tk *entities.Ticket) {
		tk.Subject = `Сломалась "корзина"`
		tk.Description = "Кнопка не работает"
		tk.AssignedTo = null.Uint64From(42)
		tk.CategoryID = null.Uint64From(3)
	})
	svc := newExportServiceForTest(ticketRepo)

	res, err := svc.ExportTickets(context.Background(), ticketFilterForTest(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", res.ContentType)

	lines := strings.Split(strings.TrimRight(string(res.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, wantCSVHeader, lines[0])

	// Кавычки в теме удваиваются, поле обернуто в кавычки.
	assert.Contains(t, lines[1], `"Сломалась ""корзина"""`)
	assert.Contains(t, lines[1], `"Кнопка не работает"`)
	// Имена исполнителя и категории разрешены дополнительными запросами.
	assert.Contains(t, lines[1], "Мария Админ")
	assert.Contains(t, lines[1], "Оплата")
}

func TestExportTicketsCSVUnresolvedReferencesLeftEmpty(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	seedTicket(t, ticketRepo, func(tk *entities.Ticket) {
		tk.AssignedTo = null.Uint64From(777) // несуществующий админ
	})
	svc := newExportServiceForTest(ticketRepo)

	res, err := svc.ExportTickets(context.Background(), ticketFilterForTest(), ExportFormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(res.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[1], "777")
}

func TestExportTicketsJSON(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	seedTicket(t, ticketRepo, nil)
	svc := newExportServiceForTest(ticketRepo)

	res, err := svc.ExportTickets(context.Background(), ticketFilterForTest(), ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", res.ContentType)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Проблема с оплатой", rows[0]["subject"])
	assert.Equal(t, "open", rows[0]["status"])
}

func TestExportTicketsXLSX(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	seedTicket(t, ticketRepo, nil)
	svc := newExportServiceForTest(ticketRepo)

	res, err := svc.ExportTickets(context.Background(), ticketFilterForTest(), ExportFormatXLSX)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Data)
	assert.True(t, strings.HasSuffix(res.FileName, ".xlsx"))
}

func TestExportTicketsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(newFakeTicketRepo())

	_, err := svc.ExportTickets(context.Background(), ticketFilterForTest(), "pdf")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
