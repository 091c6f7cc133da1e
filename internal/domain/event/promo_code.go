package event

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Promo code errors
var (
	ErrPromoCodeNotFound      = shared.NewDomainError("PROMO_CODE_NOT_FOUND", "Promo code not found")
	ErrPromoCodeAlreadyExists = shared.NewDomainError("PROMO_CODE_ALREADY_EXISTS", "Promo code already exists")
	ErrPromoCodeInvalid       = shared.NewDomainError("PROMO_CODE_INVALID", "Invalid or used promo code")
	ErrInvalidDiscount        = shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 1")
)

// PromoCode grants a single discounted purchase for one event
type PromoCode struct {
	shared.BaseEntity
	Code     string
	Discount decimal.Decimal
	EventID  uuid.UUID
	IsUsed   bool
}

// NewPromoCode creates an unused promo code for an event
func NewPromoCode(eventID uuid.UUID, code string, discount decimal.Decimal) (*PromoCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Promo code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Promo code cannot exceed 50 characters")
	}
	if err := validateDiscount(discount); err != nil {
		return nil, err
	}
	return &PromoCode{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Discount:   discount,
		EventID:    eventID,
	}, nil
}

// SetCode changes the code text
func (p *PromoCode) SetCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Promo code cannot be empty")
	}
	p.Code = code
	p.Touch()
	return nil
}

// SetDiscount changes the discount fraction
func (p *PromoCode) SetDiscount(discount decimal.Decimal) error {
	if err := validateDiscount(discount); err != nil {
		return err
	}
	p.Discount = discount
	p.Touch()
	return nil
}

// Redeemable checks the code can be applied to eventID
func (p *PromoCode) Redeemable(eventID uuid.UUID) error {
	if p.IsUsed || p.EventID != eventID {
		return ErrPromoCodeInvalid
	}
	return nil
}

// Apply returns price reduced by the discount, rounded to cents
func (p *PromoCode) Apply(price decimal.Decimal) decimal.Decimal {
	return DiscountedPrice(price, p.Discount)
}

// DiscountedPrice computes price * (1 - discount) rounded to cents
func DiscountedPrice(price, discount decimal.Decimal) decimal.Decimal {
	final := price.Mul(decimal.NewFromInt(1).Sub(discount)).Round(2)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

func validateDiscount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidDiscount
	}
	return nil
}
