package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/domain"
	"meetmap/internal/middleware"
	"meetmap/internal/service"
	"meetmap/pkg/location"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc     *service.AuthService
	cfg     *config.Config
	revoker auth.Revoker
}

func NewAuthHandler(svc *service.AuthService, cfg *config.Config, revoker auth.Revoker) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg, revoker: revoker}
}

// RegisterRequest is the multipart sign-up form; the photo travels as the
// "photo" file part.
type RegisterRequest struct {
	Email     string   `form:"email" binding:"required,email"`
	Password  string   `form:"password" binding:"required"`
	Name      string   `form:"name" binding:"required,max=120"`
	Latitude  *float64 `form:"latitude"`
	Longitude *float64 `form:"longitude"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	photo, status, msg := formPhoto(c, "photo")
	if photo == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	defer photo.Close()

	in := service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Photo:    &photo.Photo,
	}
	if req.Latitude != nil && req.Longitude != nil {
		p := location.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if !p.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidCoordinates.Error()})
			return
		}
		in.Location = &p
	}

	u, tokens, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPhotoRequired), errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("register failed", "component", "auth", "email", req.Email, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		slog.Error("login failed", "component", "auth", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRevokedToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		slog.Error("refresh failed", "component", "auth", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.GetSession(c)); err != nil {
		slog.Error("logout failed", "component", "auth", "user_id", middleware.GetUserID(c), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Session is the splash screen check. It never fails with 401: a missing or
// unusable token simply routes the client to LOGIN.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := middleware.SessionFromRequest(c, &h.cfg.JWT, h.revoker)
	if err != nil {
		sess = nil
	}
	u, err := h.svc.CurrentUser(c.Request.Context(), sess)
	if err != nil {
		slog.Error("session lookup failed", "component", "auth", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session check failed"})
		return
	}
	if u == nil {
		sess = nil
	}
	route := service.ResolveRoute(sess)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": route == domain.RouteHome,
		"route":         route,
		"user":          u,
	})
}
