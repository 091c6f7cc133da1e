package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
)

// RegisterRequest contains the input for account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
}

// LoginRequest contains the input for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LogoutInput carries the tokens revoked on logout
type LogoutInput struct {
	// AccessTokenJTI and AccessTokenTTL come from the validated bearer token
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	RefreshToken   string
}

// AuthResult is returned by every successful sign-in. The refresh token
// travels in a cookie and is never serialized.
type AuthResult struct {
	User                  UserResponse `json:"user"`
	AccessToken           string       `json:"accessToken"`
	RefreshToken          string       `json:"-"`
	RefreshTokenExpiresAt time.Time    `json:"-"`
}

// UserResponse represents the signed-in user
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatarUrl"`
	ShowInAttendees bool      `json:"showInAttendees"`
	HasPassword     bool      `json:"hasPassword"`
	GoogleLinked    bool      `json:"googleLinked"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicProfileResponse is what anyone can see about a user
type PublicProfileResponse struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	AvatarURL       string                   `json:"avatarUrl"`
	CreatedAt       time.Time                `json:"createdAt"`
	OrganizedEvents []appevent.EventResponse `json:"organizedEvents"`
}

// UpdateProfileRequest is a partial profile update
type UpdateProfileRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email           *string `json:"email" binding:"omitempty,email,max=200"`
	ShowInAttendees *bool   `json:"showInAttendees"`
}

// ProfileTicket is a ticket on the owner's profile
type ProfileTicket struct {
	ID        uuid.UUID               `json:"id"`
	Status    string                  `json:"status"`
	Price     decimal.Decimal         `json:"price"`
	CreatedAt time.Time               `json:"createdAt"`
	Event     *appevent.EventResponse `json:"event"`
}

// ProfileCompany is a company the user belongs to
type ProfileCompany struct {
	appevent.CompanySummary
	Role string `json:"role"`
}

// ProfileResponse aggregates everything shown on the owner's profile page
type ProfileResponse struct {
	UserResponse
	OrganizedEvents     []appevent.EventResponse  `json:"organizedEvents"`
	Tickets             []ProfileTicket           `json:"tickets"`
	Companies           []ProfileCompany          `json:"companies"`
	SubscribedCompanies []appevent.CompanySummary `json:"subscribedCompanies"`
	UpcomingEvents      []appevent.EventResponse  `json:"upcomingEvents"`
	PastEvents          []appevent.EventResponse  `json:"pastEvents"`
}

// ToUserResponse converts a domain user; the password hash never leaves the domain
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		AvatarURL:       u.AvatarURL,
		ShowInAttendees: u.ShowInAttendees,
		HasPassword:     u.HasPassword(),
		GoogleLinked:    u.GoogleID != nil,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
