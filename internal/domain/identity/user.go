package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

const (
	minPasswordLength = 6
	maxPasswordLength = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Identity errors
var (
	ErrUserAlreadyExists  = shared.NewDomainError("USER_ALREADY_EXISTS", "User already exists")
	ErrUserNotFound       = shared.NewDomainError("USER_NOT_FOUND", "User not found")
	ErrInvalidPassword    = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid password")
	ErrEmailAlreadyInUse  = shared.NewDomainError("EMAIL_ALREADY_EXISTS", "Email already in use")
	ErrPasswordNotSet     = shared.NewDomainError("INVALID_CREDENTIALS", "Account uses Google sign-in")
	ErrInvalidGoogleToken = shared.NewDomainError("UNAUTHORIZED", "Google authentication failed")
)

// User is an account holder. Accounts created through Google have no
// password hash until they set one.
type User struct {
	shared.BaseAggregateRoot
	Email           string
	Name            string
	PasswordHash    string
	GoogleID        *string
	AvatarURL       string
	ShowInAttendees bool
}

// NewUser creates a password account
func NewUser(email, name, password string) (*User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user, err := newUser(email, name)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// NewGoogleUser creates an account linked to a Google profile
func NewGoogleUser(email, name, googleID, avatarURL string) (*User, error) {
	if googleID == "" {
		return nil, shared.NewDomainError("INVALID_GOOGLE_ID", "Google id cannot be empty")
	}
	user, err := newUser(email, name)
	if err != nil {
		return nil, err
	}
	user.GoogleID = &googleID
	user.AvatarURL = avatarURL
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

func newUser(email, name string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		ShowInAttendees:   true,
	}, nil
}

// NormalizeEmail lowercases and trims an email for comparison and storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerifyPassword checks a plain password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.touch()
	return nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.touch()
	return nil
}

// SetName sets the display name
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	u.Name = name
	u.touch()
	return nil
}

// SetAvatar sets the user's avatar URL
func (u *User) SetAvatar(url string) error {
	if len(url) > 1000 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 1000 characters")
	}
	u.AvatarURL = url
	u.touch()
	return nil
}

// SetShowInAttendees controls visibility in public attendee lists
func (u *User) SetShowInAttendees(show bool) {
	u.ShowInAttendees = show
	u.touch()
}

// LinkGoogle attaches a Google account id to an existing user
func (u *User) LinkGoogle(googleID, avatarURL string) {
	u.GoogleID = &googleID
	if u.AvatarURL == "" {
		u.AvatarURL = avatarURL
	}
	u.touch()
}

func (u *User) touch() {
	u.Touch()
}

// PublicProfile is the subset of a user visible to anyone
type PublicProfile struct {
	ID        uuid.UUID
	Name      string
	AvatarURL string
	CreatedAt time.Time
}

// Public returns the public profile of the user
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
