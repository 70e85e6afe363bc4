package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"meetmap/internal/middleware"
	"meetmap/internal/service"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	svc *service.FavoriteService
}

func NewFavoriteHandler(svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

func targetID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return uint(id), true
}

// Add is idempotent: 201 when the favorite is new, 200 when it already existed.
func (h *FavoriteHandler) Add(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}
	created, err := h.svc.Add(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFavorite):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			slog.Error("add favorite failed", "component", "favorites", "target_id", id, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		}
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"status": "ok", "favorite": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "favorite": true})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		slog.Error("remove favorite failed", "component", "favorites", "target_id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "favorite": false})
}

func (h *FavoriteHandler) Status(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}
	fav, err := h.svc.IsFavorite(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": fav})
}

func (h *FavoriteHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		slog.Error("list favorites failed", "component", "favorites", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}
