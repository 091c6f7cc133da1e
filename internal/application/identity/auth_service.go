package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/auth"
)

// Authentication errors
var (
	ErrRefreshTokenNotFound = shared.NewDomainError("UNAUTHORIZED", "Refresh token not found")
	ErrInvalidRefreshToken  = shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	ErrOAuthNotConfigured   = shared.NewDomainError("OAUTH_NOT_CONFIGURED", "Google sign-in is not configured")
)

// AuthService handles registration, sign-in and token rotation
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	oauth     OAuthProvider
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	oauth OAuthProvider,
	events shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwtService,
		blacklist: blacklist,
		oauth:     oauth,
		events:    events,
		logger:    logger,
	}
}

// Register creates a password account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	exists, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrUserAlreadyExists
	}

	user, err := identity.NewUser(req.Email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, identity.ErrUserAlreadyExists
		}
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login verifies email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, identity.ErrPasswordNotSet
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidPassword
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The presented token
// is revoked so each refresh token is usable once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenNotFound
	}
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("failed to check refresh token blacklist", zap.Error(err))
	} else if revoked {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("failed to revoke rotated refresh token", zap.Error(err))
	}
	return s.issue(user)
}

// Logout revokes the caller's access token and, when present, the refresh cookie
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	if in.AccessTokenJTI != "" && in.AccessTokenTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, in.AccessTokenJTI, in.AccessTokenTTL); err != nil {
			return err
		}
	}
	if in.RefreshToken == "" {
		return nil
	}
	claims, err := s.jwt.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL())
}

// GoogleAuthURL returns the consent screen URL for the given state
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.oauth == nil || !s.oauth.Enabled() {
		return "", ErrOAuthNotConfigured
	}
	return s.oauth.AuthCodeURL(state), nil
}

// GoogleCallback completes Google sign-in. A known Google id signs in; an
// existing email gets the Google account linked; otherwise an account is created.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*AuthResult, error) {
	if s.oauth == nil || !s.oauth.Enabled() {
		return nil, ErrOAuthNotConfigured
	}
	profile, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return nil, identity.ErrInvalidGoogleToken
	}

	user, err := s.users.FindByGoogleID(ctx, profile.GoogleID)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = s.users.FindByEmail(ctx, identity.NormalizeEmail(profile.Email))
	switch {
	case err == nil:
		user.LinkGoogle(profile.GoogleID, profile.AvatarURL)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("google account linked", zap.String("user_id", user.ID.String()))
		return s.issue(user)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	user, err = identity.NewGoogleUser(profile.Email, profile.Name, profile.GoogleID, profile.AvatarURL)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)
	s.logger.Info("user registered via google", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &AuthResult{
		User:                  ToUserResponse(user),
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

// publish hands the user's pending events to the bus; failures never undo the sign-up
func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, user.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish user events", zap.Error(err))
	}
	user.ClearDomainEvents()
}
