package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"support-system/internal/entities"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/types"
)

// Фейковые репозитории в памяти. Позволяют проверять бизнес-правила
// сервисов без поднятия базы.

type fakeTicketRepo struct {
	tickets map[uint64]entities.Ticket
	nextID  uint64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[uint64]entities.Ticket), nextID: 1}
}

func (r *fakeTicketRepo) CreateTicket(_ context.Context, ticket *entities.Ticket) (uint64, error) {
	id := r.nextID
	r.nextID++
	stored := *ticket
	stored.ID = id
	r.tickets[id] = stored
	return id, nil
}

func (r *fakeTicketRepo) FindTicket(_ context.Context, id uint64) (*entities.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) FindOwnedTicket(ctx context.Context, id uint64, customerID uint64, customerEmail string) (*entities.Ticket, error) {
	ticket, err := r.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customerID && ticket.CustomerEmail != customerEmail {
		return nil, apperrors.ErrNotFound
	}
	return ticket, nil
}

func (r *fakeTicketRepo) GetTicketsForCustomer(_ context.Context, customerID uint64, customerEmail string, status string, limit, offset uint64) ([]entities.Ticket, uint64, error) {
	matched := make([]entities.Ticket, 0)
	for _, t := range r.tickets {
		if t.CustomerID != customerID && t.CustomerEmail != customerEmail {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := uint64(len(matched))
	return paginateTickets(matched, limit, offset), total, nil
}

func (r *fakeTicketRepo) GetTickets(_ context.Context, filter types.TicketFilter) ([]entities.Ticket, uint64, error) {
	matched := make([]entities.Ticket, 0)
	for _, t := range r.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := uint64(len(matched))
	return paginateTickets(matched, filter.Limit, filter.Offset), total, nil
}

func paginateTickets(tickets []entities.Ticket, limit, offset uint64) []entities.Ticket {
	if limit == 0 {
		return tickets
	}
	if offset >= uint64(len(tickets)) {
		return nil
	}
	end := offset + limit
	if end > uint64(len(tickets)) {
		end = uint64(len(tickets))
	}
	return tickets[offset:end]
}

func (r *fakeTicketRepo) UpdateTicket(_ context.Context, ticket *entities.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) BulkUpdateTickets(_ context.Context, ids []uint64, column string, value interface{}) (int64, error) {
	var updated int64
	for _, id := range ids {
		ticket, ok := r.tickets[id]
		if !ok {
			continue
		}
		switch column {
		case "status":
			ticket.Status = value.(string)
		case "priority":
			ticket.Priority = value.(string)
		case "assigned_to":
			if value == nil {
				ticket.AssignedTo.Valid = false
				ticket.AssignedTo.Uint64 = 0
			} else {
				ticket.AssignedTo.Valid = true
				ticket.AssignedTo.Uint64 = value.(uint64)
			}
		case "category_id":
			if value == nil {
				ticket.CategoryID.Valid = false
				ticket.CategoryID.Uint64 = 0
			} else {
				ticket.CategoryID.Valid = true
				ticket.CategoryID.Uint64 = value.(uint64)
			}
		}
		r.tickets[id] = ticket
		updated++
	}
	return updated, nil
}

type fakeMessageRepo struct {
	messages   []entities.Message
	nextID     uint64
	failCreate bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, message *entities.Message) (uint64, error) {
	if r.failCreate {
		return 0, errors.New("вставка сообщения отклонена")
	}
	id := r.nextID
	r.nextID++
	stored := *message
	stored.ID = id
	r.messages = append(r.messages, stored)
	return id, nil
}

func (r *fakeMessageRepo) GetTicketMessages(_ context.Context, ticketID uint64, includeInternal bool) ([]entities.Message, error) {
	result := make([]entities.Message, 0)
	for _, m := range r.messages {
		if !m.TicketID.Valid || m.TicketID.Uint64 != ticketID {
			continue
		}
		if !includeInternal && m.IsInternal {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *fakeMessageRepo) GetSessionMessages(_ context.Context, sessionID uint64, includeInternal bool) ([]entities.Message, error) {
	result := make([]entities.Message, 0)
	for _, m := range r.messages {
		if !m.ChatSessionID.Valid || m.ChatSessionID.Uint64 != sessionID {
			continue
		}
		if !includeInternal && m.IsInternal {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

type fakeChatRepo struct {
	sessions map[uint64]entities.ChatSession
	nextID   uint64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{sessions: make(map[uint64]entities.ChatSession), nextID: 1}
}

func (r *fakeChatRepo) CreateSession(_ context.Context, session *entities.ChatSession) (uint64, error) {
	id := r.nextID
	r.nextID++
	stored := *session
	stored.ID = id
	r.sessions[id] = stored
	return id, nil
}

func (r *fakeChatRepo) FindSessionByID(_ context.Context, id uint64) (*entities.ChatSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := session
	return &copied, nil
}

func (r *fakeChatRepo) FindSessionByCode(_ context.Context, code string) (*entities.ChatSession, error) {
	for _, s := range r.sessions {
		if s.SessionCode == code {
			copied := s
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeChatRepo) FindOwnedSession(ctx context.Context, id uint64, customerID uint64, customerEmail string) (*entities.ChatSession, error) {
	session, err := r.FindSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != customerID && session.CustomerEmail != customerEmail {
		return nil, apperrors.ErrNotFound
	}
	return session, nil
}

func (r *fakeChatRepo) GetSessionsForCustomer(_ context.Context, customerID uint64, customerEmail string, limit, offset uint64) ([]entities.ChatSession, uint64, error) {
	matched := make([]entities.ChatSession, 0)
	for _, s := range r.sessions {
		if s.CustomerID == customerID || s.CustomerEmail == customerEmail {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, uint64(len(matched)), nil
}

func (r *fakeChatRepo) GetSessions(_ context.Context, filter types.ChatFilter) ([]entities.ChatSession, uint64, error) {
	matched := make([]entities.ChatSession, 0)
	for _, s := range r.sessions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, uint64(len(matched)), nil
}

func (r *fakeChatRepo) UpdateSession(_ context.Context, session *entities.ChatSession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

type fakeUserRepo struct {
	users map[uint64]entities.User
}

func newFakeUserRepo(users ...entities.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint64]entities.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := u
	return &copied, nil
}

type fakeCategoryRepo struct {
	categories map[uint64]entities.TicketCategory
	nextID     uint64
}

func newFakeCategoryRepo(categories ...entities.TicketCategory) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[uint64]entities.TicketCategory), nextID: 1}
	for _, c := range categories {
		repo.categories[c.ID] = c
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (r *fakeCategoryRepo) GetTicketCategories(_ context.Context, activeOnly bool) ([]entities.TicketCategory, error) {
	result := make([]entities.TicketCategory, 0)
	for _, c := range r.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (r *fakeCategoryRepo) FindTicketCategory(_ context.Context, id uint64) (*entities.TicketCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := c
	return &copied, nil
}

func (r *fakeCategoryRepo) CreateTicketCategory(_ context.Context, category *entities.TicketCategory) (uint64, error) {
	id := r.nextID
	r.nextID++
	stored := *category
	stored.ID = id
	r.categories[id] = stored
	return id, nil
}

func (r *fakeCategoryRepo) UpdateTicketCategory(_ context.Context, category *entities.TicketCategory) error {
	if _, ok := r.categories[category.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) DeleteTicketCategory(_ context.Context, id uint64) error {
	if _, ok := r.categories[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeNotificationRepo struct {
	notifications map[uint64]entities.Notification
	nextID        uint64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uint64]entities.Notification), nextID: 1}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, notification *entities.Notification) (uint64, error) {
	id := r.nextID
	r.nextID++
	stored := *notification
	stored.ID = id
	r.notifications[id] = stored
	return id, nil
}

func (r *fakeNotificationRepo) GetNotifications(_ context.Context, unreadOnly bool, limit, offset uint64) ([]entities.Notification, uint64, error) {
	result := make([]entities.Notification, 0)
	for _, n := range r.notifications {
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, uint64(len(result)), nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uint64, readAt time.Time) error {
	n, ok := r.notifications[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	n.IsRead = true
	n.ReadAt.Valid = true
	n.ReadAt.Time = readAt
	r.notifications[id] = n
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, readAt time.Time) (int64, error) {
	var marked int64
	for id, n := range r.notifications {
		if n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt.Valid = true
		n.ReadAt.Time = readAt
		r.notifications[id] = n
		marked++
	}
	return marked, nil
}

type fakeCacheRepo struct {
	values map[string]string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string]string)}
}

func (r *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	str, ok := value.(string)
	if !ok {
		return errors.New("ожидалась строка")
	}
	r.values[key] = str
	return nil
}

func (r *fakeCacheRepo) Get(_ context.Context, key string) (string, error) {
	value, ok := r.values[key]
	if !ok {
		return "", errors.New("ключ не найден")
	}
	return value, nil
}

func (r *fakeCacheRepo) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}
