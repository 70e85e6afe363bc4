package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"meetmap/internal/middleware"
	"meetmap/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	users *service.UserService
}

func NewMeHandler(users *service.UserService) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) Profile(c *gin.Context) {
	u, err := h.users.Profile(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=120"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.UpdateName(c.Request.Context(), middleware.GetSession(c), req.Name)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"user": u})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	}
}

// UploadPhoto replaces the caller's profile photo.
func (h *MeHandler) UploadPhoto(c *gin.Context) {
	photo, status, msg := formPhoto(c, "photo")
	if photo == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	defer photo.Close()
	sess := middleware.GetSession(c)
	u, err := h.users.UpdatePhoto(c.Request.Context(), sess, &photo.Photo)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		slog.Error("photo upload failed", "component", "media", "user_id", sess.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "photo_url": u.PhotoURL})
}

// RegisterFCMToken saves the FCM token for push notifications.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	if err := h.users.RegisterFCMToken(c.Request.Context(), middleware.GetSession(c), req.Token); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
