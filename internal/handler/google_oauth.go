package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meetmap/config"
	"meetmap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	oauthStateCookie   = "meetmap_oauth_state"
)

var errGoogleToken = errors.New("invalid id_token")

type GoogleOAuthHandler struct {
	cfg          *config.Config
	authSvc      *service.AuthService
	tokenInfoURL string
	httpClient   *http.Client
}

func NewGoogleOAuthHandler(cfg *config.Config, authSvc *service.AuthService) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		cfg:          cfg,
		authSvc:      authSvc,
		tokenInfoURL: googleTokenInfoURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.OAuth.GoogleClientID,
		ClientSecret: h.cfg.OAuth.GoogleClientSecret,
		RedirectURL:  h.cfg.OAuth.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *GoogleOAuthHandler) configured(c *gin.Context) bool {
	if h.cfg.OAuth.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return false
	}
	return true
}

// Redirect sends the browser to the Google consent screen.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.cfg.IsProduction(), true)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline))
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Callback exchanges the code, fetches the Google profile and signs the user in.
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	state, _ := c.Cookie(oauthStateCookie)
	if state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exchange failed"})
		return
	}
	resp, err := conf.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()
	var info googleUserInfo
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&info) != nil || info.ID == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid user info"})
		return
	}
	h.signIn(c, service.GoogleProfile{
		ID:            info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	})
}

// tokeninfoResponse is the answer of the tokeninfo endpoint for an ID token.
type tokeninfoResponse struct {
	Sub           string          `json:"sub"` // Google ID
	Aud           string          `json:"aud"`
	Email         string          `json:"email"`
	EmailVerified json.RawMessage `json:"email_verified"`
	Name          string          `json:"name"`
	Picture       string          `json:"picture"`
}

// emailVerified accepts both "true" and true; tokeninfo sends strings.
func (r tokeninfoResponse) emailVerified() bool {
	return strings.Trim(string(r.EmailVerified), `"`) == "true"
}

// Token accepts an ID token obtained by the mobile Google sign-in SDK.
func (h *GoogleOAuthHandler) Token(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token required"})
		return
	}
	profile, err := h.verifyIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, errGoogleToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		slog.Error("google token verification failed", "component", "auth", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "token verification failed"})
		return
	}
	h.signIn(c, profile)
}

func (h *GoogleOAuthHandler) verifyIDToken(ctx context.Context, idToken string) (service.GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.tokenInfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return service.GoogleProfile{}, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return service.GoogleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return service.GoogleProfile{}, fmt.Errorf("%w: %s", errGoogleToken, string(body))
	}
	var info tokeninfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return service.GoogleProfile{}, fmt.Errorf("decode tokeninfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return service.GoogleProfile{}, fmt.Errorf("%w: missing subject or email", errGoogleToken)
	}
	if info.Aud != h.cfg.OAuth.GoogleClientID {
		return service.GoogleProfile{}, fmt.Errorf("%w: audience mismatch", errGoogleToken)
	}
	return service.GoogleProfile{
		ID:            info.Sub,
		Email:         info.Email,
		EmailVerified: info.emailVerified(),
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

func (h *GoogleOAuthHandler) signIn(c *gin.Context, p service.GoogleProfile) {
	u, tokens, isNew, err := h.authSvc.LoginWithGoogle(c.Request.Context(), p)
	if errors.Is(err, service.ErrEmailUnverified) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("google login failed", "component", "auth", "email", p.Email, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"user":          u,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
		"is_new":        isNew,
	})
}
