package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// AttendeeExport is a rendered attendee file
type AttendeeExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttendeeService gives event managers access to ticket holders
type AttendeeService struct {
	access
	exporter AttendeeExporter
	logger   *zap.Logger
}

// NewAttendeeService creates a new attendee service
func NewAttendeeService(repos Repositories, exporter AttendeeExporter, logger *zap.Logger) *AttendeeService {
	return &AttendeeService{access: access{repos: repos}, exporter: exporter, logger: logger}
}

// List returns the event's tickets with holder and payment, newest first
func (s *AttendeeService) List(ctx context.Context, eventID, userID uuid.UUID, q AttendeeQuery) ([]AttendeeResponse, error) {
	if _, err := s.managedEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.attendees(ctx, eventID, q)
}

// Statistics counts tickets per status and sums ACTIVE ticket prices
func (s *AttendeeService) Statistics(ctx context.Context, eventID, userID uuid.UUID) (*AttendeeStatistics, error) {
	if _, err := s.managedEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	counts, err := s.repos.Tickets.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Tickets.SumActivePrices(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats := map[string]int64{
		string(ticketing.TicketStatusActive):    0,
		string(ticketing.TicketStatusCancelled): 0,
	}
	for status, n := range counts {
		stats[string(status)] = n
	}
	return &AttendeeStatistics{Statistics: stats, TotalAmount: total}, nil
}

// Export renders every attendee of the event as a spreadsheet
func (s *AttendeeService) Export(ctx context.Context, eventID, userID uuid.UUID) (*AttendeeExport, error) {
	e, err := s.managedEvent(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.attendees(ctx, eventID, AttendeeQuery{})
	if err != nil {
		return nil, err
	}
	data, err := s.exporter.Export(ctx, AttendeeSheet{
		EventTitle: e.Title,
		EventDate:  e.Date,
		Attendees:  rows,
	})
	if err != nil {
		return nil, fmt.Errorf("export attendees: %w", err)
	}
	return &AttendeeExport{
		Filename:    fmt.Sprintf("attendees-%s.%s", e.ID, s.exporter.Extension()),
		ContentType: s.exporter.ContentType(),
		Data:        data,
	}, nil
}

// CancelTicket deactivates an ACTIVE ticket of the event
func (s *AttendeeService) CancelTicket(ctx context.Context, eventID, ticketID, userID uuid.UUID) (*AttendeeResponse, error) {
	if _, err := s.managedEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	t, err := s.repos.Tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ticketing.ErrTicketNotFound
		}
		return nil, err
	}
	if t.EventID != eventID {
		return nil, ticketing.ErrTicketNotFound
	}
	if err := t.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repos.Tickets.Update(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("ticket cancelled by organizer",
		zap.String("event_id", eventID.String()),
		zap.String("ticket_id", ticketID.String()),
		zap.String("actor_id", userID.String()))

	users, err := s.usersByID(ctx, []uuid.UUID{t.UserID})
	if err != nil {
		return nil, err
	}
	resp := toAttendeeResponse(t, users[t.UserID], nil)
	return &resp, nil
}

func (s *AttendeeService) attendees(ctx context.Context, eventID uuid.UUID, q AttendeeQuery) ([]AttendeeResponse, error) {
	filter := ticketing.AttendeeFilter{Search: strings.TrimSpace(q.Search)}
	if q.Status != "" {
		status := ticketing.TicketStatus(q.Status)
		filter.Status = &status
	}
	tickets, err := s.repos.Tickets.FindByEvent(ctx, eventID, filter)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return []AttendeeResponse{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(tickets))
	ticketIDs := make([]uuid.UUID, len(tickets))
	seen := make(map[uuid.UUID]struct{}, len(tickets))
	for i, t := range tickets {
		ticketIDs[i] = t.ID
		if _, ok := seen[t.UserID]; !ok {
			seen[t.UserID] = struct{}{}
			userIDs = append(userIDs, t.UserID)
		}
	}
	users, err := s.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments.FindByTicketIDs(ctx, ticketIDs)
	if err != nil {
		return nil, err
	}
	byTicket := make(map[uuid.UUID]*ticketing.Payment, len(payments))
	for _, p := range payments {
		byTicket[p.TicketID] = p
	}

	out := make([]AttendeeResponse, len(tickets))
	for i, t := range tickets {
		out[i] = toAttendeeResponse(t, users[t.UserID], byTicket[t.ID])
	}
	return out, nil
}
