package event

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// PromoCodeService manages the discount codes of an event
type PromoCodeService struct {
	access
	logger *zap.Logger
}

// NewPromoCodeService creates a new promo code service
func NewPromoCodeService(repos Repositories, logger *zap.Logger) *PromoCodeService {
	return &PromoCodeService{access: access{repos: repos}, logger: logger}
}

// List returns the event's codes to a manager
func (s *PromoCodeService) List(ctx context.Context, eventID, userID uuid.UUID) ([]PromoCodeResponse, error) {
	if _, err := s.managedEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	codes, err := s.repos.PromoCodes.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]PromoCodeResponse, len(codes))
	for i, p := range codes {
		out[i] = ToPromoCodeResponse(p)
	}
	return out, nil
}

// Create adds a globally unique code to the event
func (s *PromoCodeService) Create(ctx context.Context, eventID, userID uuid.UUID, req CreatePromoCodeRequest) (*PromoCodeResponse, error) {
	if _, err := s.managedEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	promo, err := event.NewPromoCode(eventID, req.Code, req.Discount)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, promo.Code); err != nil {
		return nil, err
	}
	if err := s.repos.PromoCodes.Create(ctx, promo); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, event.ErrPromoCodeAlreadyExists
		}
		return nil, err
	}
	s.logger.Debug("promo code created",
		zap.String("event_id", eventID.String()), zap.String("code", promo.Code))
	resp := ToPromoCodeResponse(promo)
	return &resp, nil
}

// Update changes the text or discount of a code
func (s *PromoCodeService) Update(ctx context.Context, eventID, promoID, userID uuid.UUID, req UpdatePromoCodeRequest) (*PromoCodeResponse, error) {
	promo, err := s.findForEvent(ctx, eventID, promoID, userID)
	if err != nil {
		return nil, err
	}
	if req.Code != nil && strings.TrimSpace(*req.Code) != promo.Code {
		if err := s.ensureUnique(ctx, strings.TrimSpace(*req.Code)); err != nil {
			return nil, err
		}
		if err := promo.SetCode(*req.Code); err != nil {
			return nil, err
		}
	}
	if req.Discount != nil {
		if err := promo.SetDiscount(*req.Discount); err != nil {
			return nil, err
		}
	}
	if err := s.repos.PromoCodes.Update(ctx, promo); err != nil {
		return nil, err
	}
	resp := ToPromoCodeResponse(promo)
	return &resp, nil
}

// Delete removes a code
func (s *PromoCodeService) Delete(ctx context.Context, eventID, promoID, userID uuid.UUID) error {
	promo, err := s.findForEvent(ctx, eventID, promoID, userID)
	if err != nil {
		return err
	}
	return s.repos.PromoCodes.Delete(ctx, promo.ID)
}

// Validate prices the event with the code without consuming it
func (s *PromoCodeService) Validate(ctx context.Context, eventID uuid.UUID, req ValidatePromoCodeRequest) (*PromoCodeValidation, error) {
	e, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	promo, err := s.repos.PromoCodes.FindByCode(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, event.ErrPromoCodeInvalid
		}
		return nil, err
	}
	if err := promo.Redeemable(e.ID); err != nil {
		return nil, err
	}
	return &PromoCodeValidation{
		Code:          promo.Code,
		Discount:      promo.Discount,
		OriginalPrice: e.Price,
		FinalPrice:    promo.Apply(e.Price),
	}, nil
}

func (s *PromoCodeService) findForEvent(ctx context.Context, eventID, promoID, userID uuid.UUID) (*event.PromoCode, error) {
	if _, err := s.managedEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	promo, err := s.repos.PromoCodes.FindByID(ctx, promoID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, event.ErrPromoCodeNotFound
		}
		return nil, err
	}
	if promo.EventID != eventID {
		return nil, event.ErrPromoCodeNotFound
	}
	return promo, nil
}

func (s *PromoCodeService) ensureUnique(ctx context.Context, code string) error {
	exists, err := s.repos.PromoCodes.ExistsByCode(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return event.ErrPromoCodeAlreadyExists
	}
	return nil
}
