package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/t1tandr/uevent/internal/application/identity"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/infrastructure/auth"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
	"github.com/t1tandr/uevent/internal/interfaces/http/middleware"
	"github.com/t1tandr/uevent/tests/testutil/mocks"
)

type authHandlerFixture struct {
	users   *mocks.UserRepository
	jwt     *auth.JWTService
	service *appidentity.AuthService
	router  *gin.Engine
}

func newAuthHandlerFixture() *authHandlerFixture {
	f := &authHandlerFixture{
		users: new(mocks.UserRepository),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			RefreshSecret:          "test-refresh-secret-key-32-chars",
			AccessTokenExpiration:  time.Hour,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "uevent-test",
		}),
	}
	f.service = appidentity.NewAuthService(f.users, f.jwt, auth.NewInMemoryTokenBlacklist(), nil, &mocks.EventPublisher{}, zap.NewNop())
	h := NewAuthHandler(f.service, config.CookieConfig{HTTPOnly: true, SameSite: "lax"}, "http://localhost:5173/")

	f.router = gin.New()
	g := f.router.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/login/access-token", h.RefreshAccessToken)
	g.POST("/logout", middleware.OptionalJWTAuthMiddleware(f.jwt), h.Logout)
	g.GET("/google", h.GoogleLogin)
	g.GET("/google/callback", h.GoogleCallback)
	return f
}

func (f *authHandlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates the account and sets the refresh cookie", func(t *testing.T) {
		f := newAuthHandlerFixture()
		f.users.On("ExistsByEmail", mock.Anything, "bob@example.com").Return(false, nil)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		w := f.do(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "bob@example.com", "password": "secret123", "name": "Bob",
		}))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.NotEmpty(t, data["accessToken"])

		cookie := refreshCookie(w)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.NotEmpty(t, cookie.Value)
	})

	t.Run("existing email", func(t *testing.T) {
		f := newAuthHandlerFixture()
		f.users.On("ExistsByEmail", mock.Anything, "bob@example.com").Return(true, nil)

		w := f.do(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "bob@example.com", "password": "secret123", "name": "Bob",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "USER_ALREADY_EXISTS", decodeResponse(t, w).Error.Code)
		assert.Nil(t, refreshCookie(w))
	})

	t.Run("validation", func(t *testing.T) {
		f := newAuthHandlerFixture()
		w := f.do(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "not-an-email", "password": "1", "name": "",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAuthHandlerFixture()
	user, err := identity.NewUser("alice@example.com", "Alice", "secret123")
	require.NoError(t, err)
	f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil)

	w := f.do(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeResponse(t, w).Error.Code)

	w = f.do(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, refreshCookie(w))
}

func TestAuthHandler_RefreshAccessToken(t *testing.T) {
	t.Run("missing cookie clears it and returns 401", func(t *testing.T) {
		f := newAuthHandlerFixture()
		w := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/login/access-token", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeResponse(t, w).Error.Code)
		cookie := refreshCookie(w)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})

	t.Run("rotates the cookie", func(t *testing.T) {
		f := newAuthHandlerFixture()
		user, err := identity.NewUser("alice@example.com", "Alice", "secret123")
		require.NoError(t, err)
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		pair, err := f.jwt.GenerateTokenPair(user.ID, user.Email)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login/access-token", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: pair.RefreshToken})
		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		cookie := refreshCookie(w)
		require.NotNil(t, cookie)
		assert.NotEqual(t, pair.RefreshToken, cookie.Value)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthHandlerFixture()
	user, err := identity.NewUser("alice@example.com", "Alice", "secret123")
	require.NoError(t, err)
	pair, err := f.jwt.GenerateTokenPair(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: pair.RefreshToken})
	w := f.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Logout successful", data["message"])
	assert.Empty(t, refreshCookie(w).Value)

	_, err = f.service.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, appidentity.ErrInvalidRefreshToken)
}

func TestAuthHandler_Google(t *testing.T) {
	f := newAuthHandlerFixture()

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "OAUTH_NOT_CONFIGURED", decodeResponse(t, w).Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "other"})
	w = f.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "http://localhost:5173/auth/failure?error=INVALID_STATE"))

	req = httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "abc"})
	w = f.do(req)
	assert.Equal(t, "http://localhost:5173/auth/failure?error=OAUTH_NOT_CONFIGURED", w.Header().Get("Location"))
}
