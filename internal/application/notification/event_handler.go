package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/notification"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"github.com/t1tandr/uevent/internal/infrastructure/telemetry"
)

// Repositories groups the lookups needed to resolve recipients
type Repositories struct {
	Users       identity.UserRepository
	Events      event.EventRepository
	Tickets     ticketing.TicketRepository
	Companies   company.CompanyRepository
	Subscribers company.SubscriberRepository
}

// DomainEventHandler turns domain events into in-app notifications and mail.
// Mail failures are logged and never fail the handler.
type DomainEventHandler struct {
	repos        Repositories
	notifier     *NotificationService
	mailer       Mailer
	renderer     appticketing.TicketRenderer
	supportEmail string
	logger       *zap.Logger
}

// NewDomainEventHandler creates the handler. renderer may be nil, in which
// case ticket mails go out without the PDF.
func NewDomainEventHandler(
	repos Repositories,
	notifier *NotificationService,
	mailer Mailer,
	renderer appticketing.TicketRenderer,
	supportEmail string,
	logger *zap.Logger,
) *DomainEventHandler {
	return &DomainEventHandler{
		repos:        repos,
		notifier:     notifier,
		mailer:       mailer,
		renderer:     renderer,
		supportEmail: supportEmail,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *DomainEventHandler) EventTypes() []string {
	return []string{
		identity.EventTypeUserRegistered,
		ticketing.EventTypeTicketPurchased,
		event.EventTypeEventPublished,
		event.EventTypeEventUpdated,
		event.EventTypeEventCancelled,
		company.EventTypeCompanyUpdated,
		company.EventTypeMemberInvited,
		company.EventTypeMemberRoleUpdated,
	}
}

// Handle dispatches on the concrete event type
func (h *DomainEventHandler) Handle(ctx context.Context, evt shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "notification", "dispatch",
		telemetry.AttrDomainEvent.String(evt.EventType()))
	defer func() { telemetry.EndSpan(span, err) }()

	switch e := evt.(type) {
	case *identity.UserRegisteredEvent:
		h.send(ctx, MailMessage{To: e.Email, Template: TemplateWelcome, Data: map[string]any{"name": e.Name}})
		return nil
	case *ticketing.TicketPurchasedEvent:
		return h.onTicketPurchased(ctx, e)
	case *event.EventPublishedEvent:
		return h.onEventPublished(ctx, e)
	case *event.EventUpdatedEvent:
		return h.onEventUpdated(ctx, e)
	case *event.EventCancelledEvent:
		return h.onEventCancelled(ctx, e)
	case *company.CompanyUpdatedEvent:
		return h.onCompanyUpdated(ctx, e)
	case *company.MemberInvitedEvent:
		return h.onMembership(ctx, e.AggregateID(), e.CompanyName, e.UserID, e.Role, TemplateCompanyInvitation)
	case *company.MemberRoleUpdatedEvent:
		return h.onMembership(ctx, e.AggregateID(), e.CompanyName, e.UserID, e.NewRole, TemplateCompanyRoleUpdate)
	default:
		h.logger.Warn("unexpected event type", zap.String("type", evt.EventType()))
		return nil
	}
}

func (h *DomainEventHandler) onTicketPurchased(ctx context.Context, evt *ticketing.TicketPurchasedEvent) error {
	t, err := h.repos.Tickets.FindByID(ctx, evt.AggregateID())
	if err != nil {
		return fmt.Errorf("load ticket: %w", err)
	}
	e, err := h.repos.Events.FindByID(ctx, t.EventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	holder, err := h.repos.Users.FindByID(ctx, t.UserID)
	if err != nil {
		return fmt.Errorf("load ticket holder: %w", err)
	}

	n, err := notification.New(holder.ID, notification.TypeTicketPurchased,
		"Ticket confirmed", fmt.Sprintf("Your ticket for %s is confirmed", e.Title))
	if err != nil {
		return err
	}
	notices := []*notification.Notification{n.ForEvent(e.ID)}

	msg := MailMessage{To: holder.Email, Template: TemplateTicketConfirmation, Data: eventData(e, holder.Name)}
	msg.Data["ticketId"] = t.ID.String()
	msg.Data["price"] = t.Price
	msg.Data["isFree"] = t.Price.IsZero()
	if pdf := h.renderTicket(ctx, t, e, holder.Name); pdf != nil {
		msg.Attachments = []Attachment{{
			Filename:    fmt.Sprintf("ticket-%s.pdf", t.ID),
			ContentType: "application/pdf",
			Data:        pdf,
		}}
	}
	msg.Data["hasPdf"] = len(msg.Attachments) > 0
	h.send(ctx, msg)

	if evt.Provider != ticketing.ProviderFree {
		payment := MailMessage{To: holder.Email, Template: TemplatePaymentConfirmation, Data: eventData(e, holder.Name)}
		payment.Data["amount"] = evt.Amount
		payment.Data["date"] = evt.OccurredAt()
		h.send(ctx, payment)
	}

	if e.NotifyOrganizer && e.OrganizerID != holder.ID {
		organizer, err := h.repos.Users.FindByID(ctx, e.OrganizerID)
		if err != nil {
			h.logger.Warn("organizer not found", zap.String("event_id", e.ID.String()), zap.Error(err))
		} else {
			n, err := notification.New(organizer.ID, notification.TypeNewAttendee,
				"New attendee", fmt.Sprintf("%s got a ticket for %s", holder.Name, e.Title))
			if err != nil {
				return err
			}
			notices = append(notices, n.ForEvent(e.ID))
			data := eventData(e, organizer.Name)
			data["organizerName"] = organizer.Name
			data["attendeeName"] = holder.Name
			data["attendeeEmail"] = holder.Email
			h.send(ctx, MailMessage{To: organizer.Email, Template: TemplateNewAttendee, Data: data})
		}
	}

	return h.notifier.Notify(ctx, notices...)
}

func (h *DomainEventHandler) onEventPublished(ctx context.Context, evt *event.EventPublishedEvent) error {
	if evt.CompanyID == nil {
		return nil
	}
	companyID, err := uuid.Parse(*evt.CompanyID)
	if err != nil {
		return err
	}
	c, err := h.repos.Companies.FindByID(ctx, companyID)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}
	subs, err := h.repos.Subscribers.FindByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	notices := make([]*notification.Notification, 0, len(subs))
	for _, sub := range subs {
		n, err := notification.New(sub.UserID, notification.TypeNewEvent,
			"New event", fmt.Sprintf("%s published %s", c.Name, evt.Title))
		if err != nil {
			return err
		}
		notices = append(notices, n.ForEvent(evt.AggregateID()).ForCompany(companyID))
	}
	return h.notifier.Notify(ctx, notices...)
}

func (h *DomainEventHandler) onEventUpdated(ctx context.Context, evt *event.EventUpdatedEvent) error {
	if len(evt.Changes) == 0 || evt.Status != event.StatusPublished {
		return nil
	}
	e, holders, err := h.eventWithHolders(ctx, evt.AggregateID())
	if err != nil {
		return err
	}
	notices := make([]*notification.Notification, 0, len(holders))
	for _, u := range holders {
		n, err := notification.New(u.ID, notification.TypeEventUpdate,
			"Event updated", fmt.Sprintf("%s has been updated", e.Title))
		if err != nil {
			return err
		}
		notices = append(notices, n.ForEvent(e.ID))
		data := eventData(e, u.Name)
		data["changes"] = evt.Changes
		h.send(ctx, MailMessage{To: u.Email, Template: TemplateEventUpdate, Data: data})
	}
	return h.notifier.Notify(ctx, notices...)
}

func (h *DomainEventHandler) onEventCancelled(ctx context.Context, evt *event.EventCancelledEvent) error {
	e, holders, err := h.eventWithHolders(ctx, evt.AggregateID())
	if err != nil {
		return err
	}
	notices := make([]*notification.Notification, 0, len(holders))
	for _, u := range holders {
		n, err := notification.New(u.ID, notification.TypeEventCancelled,
			"Event cancelled", fmt.Sprintf("%s has been cancelled", e.Title))
		if err != nil {
			return err
		}
		notices = append(notices, n.ForEvent(e.ID))
		data := eventData(e, u.Name)
		if h.supportEmail != "" {
			data["supportEmail"] = h.supportEmail
		}
		h.send(ctx, MailMessage{To: u.Email, Template: TemplateEventCancellation, Data: data})
	}
	return h.notifier.Notify(ctx, notices...)
}

func (h *DomainEventHandler) onCompanyUpdated(ctx context.Context, evt *company.CompanyUpdatedEvent) error {
	subs, err := h.repos.Subscribers.FindByCompany(ctx, evt.AggregateID())
	if err != nil {
		return err
	}
	notices := make([]*notification.Notification, 0, len(subs))
	for _, sub := range subs {
		n, err := notification.New(sub.UserID, notification.TypeCompanyUpdate,
			"Company updated", fmt.Sprintf("%s updated its profile", evt.Name))
		if err != nil {
			return err
		}
		notices = append(notices, n.ForCompany(evt.AggregateID()))
	}
	return h.notifier.Notify(ctx, notices...)
}

func (h *DomainEventHandler) onMembership(ctx context.Context, companyID uuid.UUID, companyName, userID string, role company.Role, template string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	u, err := h.repos.Users.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load member: %w", err)
	}
	h.send(ctx, MailMessage{To: u.Email, Template: template, Data: map[string]any{
		"name":        u.Name,
		"companyId":   companyID.String(),
		"companyName": companyName,
		"role":        string(role),
	}})
	return nil
}

// eventWithHolders loads an event and the users holding ACTIVE tickets for it
func (h *DomainEventHandler) eventWithHolders(ctx context.Context, eventID uuid.UUID) (*event.Event, []*identity.User, error) {
	e, err := h.repos.Events.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("load event: %w", err)
	}
	holders, err := ticketHolders(ctx, h.repos, eventID)
	if err != nil {
		return nil, nil, err
	}
	return e, holders, nil
}

func (h *DomainEventHandler) renderTicket(ctx context.Context, t *ticketing.Ticket, e *event.Event, holder string) []byte {
	if h.renderer == nil {
		return nil
	}
	pdf, err := h.renderer.RenderTicket(ctx, appticketing.TicketDocument{Ticket: t, Event: e, HolderName: holder})
	if err != nil {
		h.logger.Warn("failed to render ticket pdf", zap.String("ticket_id", t.ID.String()), zap.Error(err))
		return nil
	}
	return pdf
}

func (h *DomainEventHandler) send(ctx context.Context, msg MailMessage) {
	deliver(ctx, h.mailer, h.logger, msg)
}

// ticketHolders returns the distinct users with an ACTIVE ticket for the event
func ticketHolders(ctx context.Context, repos Repositories, eventID uuid.UUID) ([]*identity.User, error) {
	active := ticketing.TicketStatusActive
	tickets, err := repos.Tickets.FindByEvent(ctx, eventID, ticketing.AttendeeFilter{Status: &active})
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.UserID)
	}
	return repos.Users.FindByIDs(ctx, uniqueIDs(ids))
}

func eventData(e *event.Event, name string) map[string]any {
	return map[string]any{
		"name":          name,
		"eventId":       e.ID.String(),
		"eventTitle":    e.Title,
		"eventDate":     e.Date,
		"eventLocation": e.Location,
	}
}

func deliver(ctx context.Context, mailer Mailer, logger *zap.Logger, msg MailMessage) {
	if mailer == nil {
		return
	}
	if err := mailer.Send(ctx, msg); err != nil {
		logger.Error("failed to send mail",
			zap.String("template", msg.Template),
			zap.String("to", msg.To),
			zap.Error(err))
	}
}

var _ shared.EventHandler = (*DomainEventHandler)(nil)
