package identity

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// UserService manages profiles
type UserService struct {
	users       identity.UserRepository
	events      event.EventRepository
	tickets     ticketing.TicketRepository
	companies   company.CompanyRepository
	members     company.MemberRepository
	subscribers company.SubscriberRepository
	storage     shared.ObjectStorage
	logger      *zap.Logger
	now         func() time.Time
}

// NewUserService creates a new user service
func NewUserService(
	users identity.UserRepository,
	events event.EventRepository,
	tickets ticketing.TicketRepository,
	companies company.CompanyRepository,
	members company.MemberRepository,
	subscribers company.SubscriberRepository,
	storage shared.ObjectStorage,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:       users,
		events:      events,
		tickets:     tickets,
		companies:   companies,
		members:     members,
		subscribers: subscribers,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
	}
}

// GetProfile builds the owner's profile page
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	organized, err := s.events.FindByOrganizer(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ticketEvents, err := s.eventsByID(ctx, tickets)
	if err != nil {
		return nil, err
	}

	profile := &ProfileResponse{
		UserResponse:        ToUserResponse(user),
		OrganizedEvents:     appevent.ToEventResponses(organized),
		Tickets:             make([]ProfileTicket, 0, len(tickets)),
		Companies:           []ProfileCompany{},
		SubscribedCompanies: []appevent.CompanySummary{},
		UpcomingEvents:      []appevent.EventResponse{},
		PastEvents:          []appevent.EventResponse{},
	}

	now := s.now()
	seen := make(map[uuid.UUID]bool)
	var upcoming, past []*event.Event
	for _, t := range tickets {
		item := ProfileTicket{ID: t.ID, Status: string(t.Status), Price: t.Price, CreatedAt: t.CreatedAt}
		e, ok := ticketEvents[t.EventID]
		if ok {
			resp := appevent.ToEventResponse(e)
			item.Event = &resp
		}
		profile.Tickets = append(profile.Tickets, item)

		if !ok || !t.IsActive() || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		if e.Date.After(now) {
			upcoming = append(upcoming, e)
		} else {
			past = append(past, e)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b *event.Event) int { return a.Date.Compare(b.Date) })
	slices.SortStableFunc(past, func(a, b *event.Event) int { return b.Date.Compare(a.Date) })
	profile.UpcomingEvents = append(profile.UpcomingEvents, appevent.ToEventResponses(upcoming)...)
	profile.PastEvents = append(profile.PastEvents, appevent.ToEventResponses(past)...)

	memberships, err := s.members.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberCompanies, err := s.companiesByID(ctx, memberIDs(memberships))
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if c, ok := memberCompanies[m.CompanyID]; ok {
			profile.Companies = append(profile.Companies, ProfileCompany{
				CompanySummary: appevent.ToCompanySummary(c),
				Role:           string(m.Role),
			})
		}
	}

	subs, err := s.subscribers.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(subs))
	for i, sub := range subs {
		ids[i] = sub.CompanyID
	}
	subscribed, err := s.companiesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if c, ok := subscribed[id]; ok {
			profile.SubscribedCompanies = append(profile.SubscribedCompanies, appevent.ToCompanySummary(c))
		}
	}

	return profile, nil
}

// GetPublicProfile returns what anyone can see about a user
func (s *UserService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	published := event.StatusPublished
	events, err := s.events.FindByOrganizer(ctx, userID, &published)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &PublicProfileResponse{
		ID:              public.ID,
		Name:            public.Name,
		AvatarURL:       public.AvatarURL,
		CreatedAt:       public.CreatedAt,
		OrganizedEvents: appevent.ToEventResponses(events),
	}, nil
}

// UpdateProfile applies a partial update to the caller's profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := identity.NormalizeEmail(*req.Email)
		if email != user.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, identity.ErrEmailAlreadyInUse
			}
			if err := user.SetEmail(email); err != nil {
				return nil, err
			}
		}
	}
	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ShowInAttendees != nil {
		user.SetShowInAttendees(*req.ShowInAttendees)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, identity.ErrEmailAlreadyInUse
		}
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateAvatar uploads a new avatar and removes the previous object
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file shared.FileUpload) (*UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, shared.FolderAvatars, file.Filename, file.Data, file.ContentType)
	if err != nil {
		return nil, err
	}
	previous := user.AvatarURL
	if err := user.SetAvatar(url); err != nil {
		s.discard(ctx, url)
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		s.discard(ctx, url)
		return nil, err
	}
	if previous != "" {
		s.discard(ctx, previous)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) eventsByID(ctx context.Context, tickets []*ticketing.Ticket) (map[uuid.UUID]*event.Event, error) {
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.EventID)
	}
	out := make(map[uuid.UUID]*event.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	events, err := s.events.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

func (s *UserService) companiesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*company.Company, error) {
	out := make(map[uuid.UUID]*company.Company, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	companies, err := s.companies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		out[c.ID] = c
	}
	return out, nil
}

// discard removes an uploaded object; failures only leave an orphan behind
func (s *UserService) discard(ctx context.Context, url string) {
	if err := s.storage.DeleteByURL(ctx, url); err != nil {
		s.logger.Warn("failed to delete stored object", zap.String("url", url), zap.Error(err))
	}
}

func memberIDs(members []*company.Member) []uuid.UUID {
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.CompanyID
	}
	return ids
}
