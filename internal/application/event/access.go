package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// Repositories groups the repositories used by the event services
type Repositories struct {
	Events     event.EventRepository
	PromoCodes event.PromoCodeRepository
	Comments   event.CommentRepository
	Tickets    ticketing.TicketRepository
	Payments   ticketing.PaymentRepository
	Users      identity.UserRepository
	Companies  company.CompanyRepository
	Members    company.MemberRepository
	Categories catalog.CategoryRepository
}

// access answers "may this user manage this event"
type access struct {
	repos Repositories
}

// findEvent maps a missing row to ErrEventNotFound
func (a access) findEvent(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	e, err := a.repos.Events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// canManage is true for the organizer and for OWNER/EDITOR of the event's company
func (a access) canManage(ctx context.Context, e *event.Event, userID uuid.UUID) (bool, error) {
	if e.IsOrganizer(userID) {
		return true, nil
	}
	if e.CompanyID == nil {
		return false, nil
	}
	return a.isCompanyManager(ctx, *e.CompanyID, userID)
}

func (a access) isCompanyManager(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	m, err := a.repos.Members.FindByCompanyAndUser(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.Role.CanManage(), nil
}

func (a access) requireManager(ctx context.Context, e *event.Event, userID uuid.UUID) error {
	ok, err := a.canManage(ctx, e, userID)
	if err != nil {
		return err
	}
	if !ok {
		return event.ErrNotEventManager
	}
	return nil
}

// managedEvent loads an event and checks the caller manages it
func (a access) managedEvent(ctx context.Context, eventID, userID uuid.UUID) (*event.Event, error) {
	e, err := a.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := a.requireManager(ctx, e, userID); err != nil {
		return nil, err
	}
	return e, nil
}

func (a access) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.User, error) {
	out := make(map[uuid.UUID]*identity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := a.repos.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, agg *event.Event) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("failed to publish event domain events",
			zap.String("event_id", agg.ID.String()), zap.Error(err))
	}
}
