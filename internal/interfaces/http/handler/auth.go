package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/t1tandr/uevent/internal/application/identity"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
	"github.com/t1tandr/uevent/internal/interfaces/http/middleware"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles sign-up, sign-in and token rotation
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookie      config.CookieConfig
	frontendURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, cookie config.CookieConfig, frontendURL string) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "refreshToken"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// Register godoc
// @Summary      Register
// @Description  Create a password account; the refresh token is set as an HTTP-only cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Account"
// @Success      201 {object} dto.Response{data=identity.AuthResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	h.Created(c, result)
}

// Login godoc
// @Summary      Login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identity.AuthResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	h.Success(c, result)
}

// RefreshAccessToken godoc
// @Summary      Refresh access token
// @Description  Issue a new access token from the refresh cookie and rotate the cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.AuthResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login/access-token [post]
func (h *AuthHandler) RefreshAccessToken(c *gin.Context) {
	token, err := c.Cookie(h.cookie.Name)
	if err != nil || token == "" {
		h.clearRefreshCookie(c)
		h.HandleError(c, identity.ErrRefreshTokenNotFound)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	h.Success(c, result)
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the presented access token and the refresh cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	in := identity.LogoutInput{}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		in.AccessTokenJTI = claims.ID
		in.AccessTokenTTL = claims.GetRemainingTTL()
	}
	if token, err := c.Cookie(h.cookie.Name); err == nil {
		in.RefreshToken = token
	}

	if err := h.authService.Logout(c.Request.Context(), in); err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	h.Message(c, "Logout successful")
}

// GoogleLogin godoc
// @Summary      Google sign-in
// @Description  Redirect to the Google consent screen
// @Tags         auth
// @Success      302
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := newOAuthState()
	target, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int((10 * time.Minute).Seconds()), "/", h.cookie.Domain, h.cookie.Secure, true)
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback godoc
// @Summary      Google sign-in callback
// @Description  Complete Google sign-in and redirect to the frontend with an access token
// @Tags         auth
// @Param        code  query string true "Authorization code"
// @Param        state query string true "State"
// @Success      302
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expected, _ := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)

	if expected == "" || c.Query("state") != expected {
		h.redirectFailure(c, "INVALID_STATE")
		return
	}
	code := c.Query("code")
	if code == "" {
		h.redirectFailure(c, "MISSING_CODE")
		return
	}

	result, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		h.redirectFailure(c, errorCodeOf(err))
		return
	}

	h.setRefreshCookie(c, result)
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/success?accessToken="+url.QueryEscape(result.AccessToken))
}

func (h *AuthHandler) redirectFailure(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/failure?error="+url.QueryEscape(code))
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, result *identity.AuthResult) {
	maxAge := int(time.Until(result.RefreshTokenExpiresAt).Seconds())
	if h.cookie.MaxAge > 0 {
		maxAge = int(h.cookie.MaxAge.Seconds())
	}
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, result.RefreshToken, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, h.cookie.HTTPOnly)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, h.cookie.HTTPOnly)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func newOAuthState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
