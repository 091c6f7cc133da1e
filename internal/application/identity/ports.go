package identity

import "context"

// OAuthProfile is the identity returned by an external provider
type OAuthProfile struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// OAuthProvider runs the authorization code flow against Google
type OAuthProvider interface {
	// Enabled reports whether client credentials are configured
	Enabled() bool
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the user's profile
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}
