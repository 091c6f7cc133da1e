package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// SubscriptionService manages company followers
type SubscriptionService struct {
	companies   company.CompanyRepository
	members     company.MemberRepository
	subscribers company.SubscriberRepository
	users       identity.UserRepository
	logger      *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repos Repositories, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		companies:   repos.Companies,
		members:     repos.Members,
		subscribers: repos.Subscribers,
		users:       repos.Users,
		logger:      logger,
	}
}

// Subscribe makes the user follow a company
func (s *SubscriptionService) Subscribe(ctx context.Context, companyID, userID uuid.UUID) (*SubscriberResponse, error) {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	exists, err := s.subscribers.Exists(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, company.ErrAlreadySubscribed
	}

	sub := company.NewSubscriber(companyID, userID)
	if err := s.subscribers.Create(ctx, sub); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, company.ErrAlreadySubscribed
		}
		return nil, err
	}
	s.logger.Debug("company subscribed", zap.String("company_id", companyID.String()), zap.String("user_id", userID.String()))
	resp := toSubscriberResponse(sub, nil)
	return &resp, nil
}

// Unsubscribe removes the user's subscription
func (s *SubscriptionService) Unsubscribe(ctx context.Context, companyID, userID uuid.UUID) error {
	if err := s.subscribers.Delete(ctx, companyID, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return company.ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

// IsSubscribed reports whether the user follows the company
func (s *SubscriptionService) IsSubscribed(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	return s.subscribers.Exists(ctx, companyID, userID)
}

// Count returns the number of subscribers of a company
func (s *SubscriptionService) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return 0, err
	}
	return s.subscribers.CountByCompany(ctx, companyID)
}

// ListByCompany returns a company's subscribers with their users
func (s *SubscriptionService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]SubscriberResponse, error) {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	subs, err := s.subscribers.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(subs))
	for i, sub := range subs {
		ids[i] = sub.UserID
	}
	users := map[uuid.UUID]*identity.User{}
	if len(ids) > 0 {
		found, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}
	out := make([]SubscriberResponse, len(subs))
	for i, sub := range subs {
		out[i] = toSubscriberResponse(sub, users[sub.UserID])
	}
	return out, nil
}

// ListForMember returns a company's subscribers to one of its members
func (s *SubscriptionService) ListForMember(ctx context.Context, companyID, userID uuid.UUID) ([]SubscriberResponse, error) {
	if _, err := s.members.FindByCompanyAndUser(ctx, companyID, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, company.ErrInsufficientPermissions
		}
		return nil, err
	}
	return s.ListByCompany(ctx, companyID)
}

// ListByUser returns the companies a user follows
func (s *SubscriptionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]CompanyResponse, error) {
	subs, err := s.subscribers.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return []CompanyResponse{}, nil
	}
	ids := make([]uuid.UUID, len(subs))
	for i, sub := range subs {
		ids[i] = sub.CompanyID
	}
	companies, err := s.companies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.subscribers.CountByCompanies(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		out[i] = ToCompanyResponse(c, counts[c.ID])
	}
	return out, nil
}

func (s *SubscriptionService) ensureCompany(ctx context.Context, id uuid.UUID) error {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return company.ErrCompanyNotFound
		}
		return err
	}
	return nil
}

func toSubscriberResponse(sub *company.Subscriber, u *identity.User) SubscriberResponse {
	resp := SubscriberResponse{
		ID:        sub.ID,
		CompanyID: sub.CompanyID,
		UserID:    sub.UserID,
		CreatedAt: sub.CreatedAt,
	}
	if u != nil {
		summary := appevent.ToUserSummary(u)
		resp.User = &summary
	}
	return resp
}
