package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by lowercased email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByGoogleID finds a user linked to a Google account
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)

	// FindByIDs loads several users at once
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
