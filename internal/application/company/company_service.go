package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// Repositories groups the read/write repositories the company services use
type Repositories struct {
	Companies   company.CompanyRepository
	Members     company.MemberRepository
	Subscribers company.SubscriberRepository
	Users       identity.UserRepository
	Events      event.EventRepository
	Tickets     ticketing.TicketRepository
	Categories  catalog.CategoryRepository
}

// CompanyService manages companies and their members
type CompanyService struct {
	repos   Repositories
	tx      TransactionScope
	storage shared.ObjectStorage
	events  shared.EventPublisher
	logger  *zap.Logger
}

// NewCompanyService creates a new company service
func NewCompanyService(
	repos Repositories,
	tx TransactionScope,
	storage shared.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		repos:   repos,
		tx:      tx,
		storage: storage,
		events:  events,
		logger:  logger,
	}
}

// List returns every company with its subscriber count
func (s *CompanyService) List(ctx context.Context) ([]CompanyResponse, error) {
	companies, err := s.repos.Companies.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, companies)
}

// ListMine returns the companies the user belongs to, with their role
func (s *CompanyService) ListMine(ctx context.Context, userID uuid.UUID) ([]MyCompanyResponse, error) {
	memberships, err := s.repos.Members.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(memberships))
	roles := make(map[uuid.UUID]company.Role, len(memberships))
	for i, m := range memberships {
		ids[i] = m.CompanyID
		roles[m.CompanyID] = m.Role
	}
	if len(ids) == 0 {
		return []MyCompanyResponse{}, nil
	}
	companies, err := s.repos.Companies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	list, err := s.withCounts(ctx, companies)
	if err != nil {
		return nil, err
	}
	out := make([]MyCompanyResponse, len(list))
	for i, c := range list {
		out[i] = MyCompanyResponse{CompanyResponse: c, Role: string(roles[c.ID])}
	}
	return out, nil
}

// Create stores a company and makes the caller its owner in one transaction
func (s *CompanyService) Create(ctx context.Context, in CreateCompanyInput) (*CompanyResponse, error) {
	c, err := company.NewCompany(in.OwnerID, in.Details)
	if err != nil {
		return nil, err
	}

	if in.Logo != nil {
		url, err := s.storage.Upload(ctx, shared.FolderCompanyLogos, in.Logo.Filename, in.Logo.Data, in.Logo.ContentType)
		if err != nil {
			return nil, err
		}
		c.SetLogo(url)
	}

	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Companies().Create(ctx, c); err != nil {
			return err
		}
		return repos.Members().Create(ctx, company.NewOwner(c.ID, in.OwnerID))
	})
	if err != nil {
		if c.LogoURL != "" {
			s.discard(ctx, c.LogoURL)
		}
		return nil, err
	}

	s.logger.Info("company created", zap.String("company_id", c.ID.String()), zap.String("owner_id", in.OwnerID.String()))
	resp := ToCompanyResponse(c, 0)
	return &resp, nil
}

// Get returns a company with members, published events and subscriber count
func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*CompanyDetailResponse, error) {
	c, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repos.Subscribers.CountByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.ListMembers(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	published := event.StatusPublished
	events, err := s.repos.Events.FindByCompany(ctx, id, event.CompanyEventsFilter{Status: &published})
	if err != nil {
		return nil, err
	}
	return &CompanyDetailResponse{
		CompanyResponse: ToCompanyResponse(c, count),
		Members:         members,
		Events:          appevent.ToEventResponses(events),
	}, nil
}

// Update changes company details; only owners and editors may do so
func (s *CompanyService) Update(ctx context.Context, id, userID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	c, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, id, userID); err != nil {
		return nil, err
	}

	if err := c.Update(company.CompanyUpdate{
		Name:        req.Name,
		Email:       req.Email,
		Location:    req.Location,
		Description: req.Description,
		Website:     req.Website,
		Phone:       req.Phone,
		SocialMedia: req.SocialMedia,
	}); err != nil {
		return nil, err
	}
	if err := s.repos.Companies.Update(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c.GetDomainEvents()...)
	c.ClearDomainEvents()

	count, err := s.repos.Subscribers.CountByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCompanyResponse(c, count)
	return &resp, nil
}

// UpdateLogo uploads a new logo and deletes the previous object
func (s *CompanyService) UpdateLogo(ctx context.Context, id, userID uuid.UUID, file shared.FileUpload) (*CompanyResponse, error) {
	c, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, id, userID); err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, shared.FolderCompanyLogos, file.Filename, file.Data, file.ContentType)
	if err != nil {
		return nil, err
	}
	previous := c.SetLogo(url)
	if err := s.repos.Companies.Update(ctx, c); err != nil {
		s.discard(ctx, url)
		return nil, err
	}
	if previous != "" {
		s.discard(ctx, previous)
	}

	count, err := s.repos.Subscribers.CountByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCompanyResponse(c, count)
	return &resp, nil
}

// ListEvents returns a company's events, newest first. Non-members only
// see published events whatever status they ask for.
func (s *CompanyService) ListEvents(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID, q CompanyEventsQuery) ([]appevent.EventResponse, error) {
	if _, err := s.findCompany(ctx, id); err != nil {
		return nil, err
	}

	filter := event.CompanyEventsFilter{Search: q.Search}
	if q.Status != "" {
		status := event.Status(q.Status)
		filter.Status = &status
	}
	member := false
	if viewerID != nil {
		m, err := s.membership(ctx, id, *viewerID)
		if err != nil {
			return nil, err
		}
		member = m != nil
	}
	if !member {
		published := event.StatusPublished
		filter.Status = &published
	}

	events, err := s.repos.Events.FindByCompany(ctx, id, filter)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoriesByID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]appevent.EventResponse, len(events))
	for i, e := range events {
		resp := appevent.ToEventResponse(e)
		if e.CategoryID != nil {
			if c, ok := categories[*e.CategoryID]; ok {
				summary := appevent.ToCategorySummary(c)
				resp.Category = &summary
			}
		}
		count, err := s.repos.Tickets.CountActiveByEvent(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		resp.AttendeeCount = &count
		out[i] = resp
	}
	return out, nil
}

// ListMembers returns members with their users, optionally for one role
func (s *CompanyService) ListMembers(ctx context.Context, id uuid.UUID, role *company.Role) ([]MemberResponse, error) {
	members, err := s.repos.Members.FindByCompany(ctx, id, role)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]MemberResponse, len(members))
	for i, m := range members {
		out[i] = toMemberResponse(m, users[m.UserID])
	}
	return out, nil
}

// AddMember adds an existing user to the company; only the owner may do so
func (s *CompanyService) AddMember(ctx context.Context, id, actorID uuid.UUID, req AddMemberRequest) (*MemberResponse, error) {
	c, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	existing, err := s.membership(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, company.ErrAlreadyMember
	}

	m, err := company.NewMember(id, user.ID, company.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.repos.Members.Create(ctx, m); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, company.ErrAlreadyMember
		}
		return nil, err
	}
	s.publish(ctx, company.NewMemberInvitedEvent(c, m))

	resp := toMemberResponse(m, user)
	return &resp, nil
}

// UpdateMemberRole changes a member's role; the owner's role is fixed
func (s *CompanyService) UpdateMemberRole(ctx context.Context, id, actorID, memberID uuid.UUID, req UpdateMemberRoleRequest) (*MemberResponse, error) {
	c, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return nil, err
	}
	m, err := s.findMember(ctx, id, memberID)
	if err != nil {
		return nil, err
	}

	old := m.Role
	if err := m.ChangeRole(company.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.repos.Members.Update(ctx, m); err != nil {
		return nil, err
	}
	if old != m.Role {
		s.publish(ctx, company.NewMemberRoleUpdatedEvent(c, m, old))
	}

	user, err := s.repos.Users.FindByID(ctx, m.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := toMemberResponse(m, user)
	return &resp, nil
}

// RemoveMember deletes a membership; the owner cannot be removed
func (s *CompanyService) RemoveMember(ctx context.Context, id, actorID, memberID uuid.UUID) error {
	if _, err := s.findCompany(ctx, id); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	m, err := s.findMember(ctx, id, memberID)
	if err != nil {
		return err
	}
	if err := m.CanBeRemoved(); err != nil {
		return err
	}
	return s.repos.Members.Delete(ctx, m.ID)
}

// CanManage reports whether the user is an owner or editor of the company
func (s *CompanyService) CanManage(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	m, err := s.membership(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role.CanManage(), nil
}

func (s *CompanyService) findCompany(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	c, err := s.repos.Companies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) findMember(ctx context.Context, companyID, memberID uuid.UUID) (*company.Member, error) {
	m, err := s.repos.Members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, company.ErrMemberNotFound
		}
		return nil, err
	}
	if m.CompanyID != companyID {
		return nil, company.ErrMemberNotFound
	}
	return m, nil
}

// membership returns nil without error when the user is not a member
func (s *CompanyService) membership(ctx context.Context, companyID, userID uuid.UUID) (*company.Member, error) {
	m, err := s.repos.Members.FindByCompanyAndUser(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *CompanyService) requireManager(ctx context.Context, companyID, userID uuid.UUID) error {
	ok, err := s.CanManage(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return company.ErrInsufficientPermissions
	}
	return nil
}

func (s *CompanyService) requireOwner(ctx context.Context, companyID, userID uuid.UUID) error {
	m, err := s.membership(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if m == nil || m.Role != company.RoleOwner {
		return company.ErrInsufficientPermissions
	}
	return nil
}

func (s *CompanyService) withCounts(ctx context.Context, companies []*company.Company) ([]CompanyResponse, error) {
	ids := make([]uuid.UUID, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
	}
	counts := map[uuid.UUID]int64{}
	if len(ids) > 0 {
		var err error
		if counts, err = s.repos.Subscribers.CountByCompanies(ctx, ids); err != nil {
			return nil, err
		}
	}
	out := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		out[i] = ToCompanyResponse(c, counts[c.ID])
	}
	return out, nil
}

func (s *CompanyService) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.User, error) {
	out := make(map[uuid.UUID]*identity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.repos.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *CompanyService) categoriesByID(ctx context.Context) (map[uuid.UUID]*catalog.Category, error) {
	categories, err := s.repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*catalog.Category, len(categories))
	for i := range categories {
		out[categories[i].ID] = &categories[i]
	}
	return out, nil
}

func (s *CompanyService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish company events", zap.Error(err))
	}
}

func (s *CompanyService) discard(ctx context.Context, url string) {
	if err := s.storage.DeleteByURL(ctx, url); err != nil {
		s.logger.Warn("failed to delete stored object", zap.String("url", url), zap.Error(err))
	}
}

func toMemberResponse(m *company.Member, u *identity.User) MemberResponse {
	resp := MemberResponse{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
	if u != nil {
		summary := appevent.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
		resp.User = &summary
	}
	return resp
}
