// Package oauth implements the Google OAuth2 authorization code flow.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	appidentity "github.com/t1tandr/uevent/internal/application/identity"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

// Google endpoints
const (
	GoogleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL    = "https://oauth2.googleapis.com/token"
	GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// ErrOAuthDisabled is returned when no client id is configured
var ErrOAuthDisabled = errors.New("google oauth is not configured")

// GoogleEndpoints lets tests point the client at a fake server
type GoogleEndpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// DefaultGoogleEndpoints returns the production endpoints
func DefaultGoogleEndpoints() GoogleEndpoints {
	return GoogleEndpoints{
		AuthURL:     GoogleAuthURL,
		TokenURL:    GoogleTokenURL,
		UserInfoURL: GoogleUserInfoURL,
	}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	IDToken          string `json:"id_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userInfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider talks to Google's OAuth and userinfo endpoints
type GoogleProvider struct {
	http      *resty.Client
	cfg       config.GoogleConfig
	endpoints GoogleEndpoints
	logger    *zap.Logger
}

// NewGoogleProvider creates a provider
func NewGoogleProvider(cfg config.GoogleConfig, endpoints GoogleEndpoints, logger *zap.Logger) *GoogleProvider {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")

	return &GoogleProvider{
		http:      client,
		cfg:       cfg,
		endpoints: endpoints,
		logger:    logger,
	}
}

// Enabled reports whether a client id is configured
func (p *GoogleProvider) Enabled() bool {
	return p.cfg.ClientID != ""
}

// AuthCodeURL builds the consent screen url
func (p *GoogleProvider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("redirect_uri", p.cfg.CallbackURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	q.Set("access_type", "online")
	q.Set("prompt", "select_account")
	return p.endpoints.AuthURL + "?" + q.Encode()
}

// Exchange trades an authorization code for the user's Google profile
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*appidentity.OAuthProfile, error) {
	if !p.Enabled() {
		return nil, ErrOAuthDisabled
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("authorization code is empty")
	}

	var token tokenResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     p.cfg.ClientID,
			"client_secret": p.cfg.ClientSecret,
			"redirect_uri":  p.cfg.CallbackURL,
			"grant_type":    "authorization_code",
		}).
		SetResult(&token).
		SetError(&token).
		Post(p.endpoints.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}
	if resp.IsError() || token.AccessToken == "" {
		p.logger.Warn("google rejected authorization code",
			zap.Int("status", resp.StatusCode()),
			zap.String("error", token.Error),
		)
		return nil, fmt.Errorf("google token exchange failed: %s %s", token.Error, token.ErrorDescription)
	}

	var info userInfoResponse
	resp, err = p.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&info).
		Get(p.endpoints.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("google userinfo request failed with status %d", resp.StatusCode())
	}
	if info.Sub == "" || info.Email == "" {
		return nil, errors.New("google profile is missing id or email")
	}

	name := info.Name
	if name == "" {
		name, _, _ = strings.Cut(info.Email, "@")
	}
	return &appidentity.OAuthProfile{
		GoogleID:  info.Sub,
		Email:     strings.ToLower(info.Email),
		Name:      name,
		AvatarURL: info.Picture,
	}, nil
}

var _ appidentity.OAuthProvider = (*GoogleProvider)(nil)
