package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"meetmap/internal/middleware"
	"meetmap/internal/service"
	"meetmap/pkg/location"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	svc *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// UpdateLocation overwrites the caller's stored position.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	sess := middleware.GetSession(c)
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := location.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
	loc, err := h.svc.Update(c.Request.Context(), sess.UserID, p)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("location update failed", "component", "location", "user_id", sess.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"latitude":        loc.Latitude,
		"longitude":       loc.Longitude,
		"last_updated_at": loc.LastUpdatedAt,
	})
}

func (h *LocationHandler) GetMyLocation(c *gin.Context) {
	sess := middleware.GetSession(c)
	loc, err := h.svc.Get(c.Request.Context(), sess.UserID)
	if err != nil {
		slog.Error("location lookup failed", "component", "location", "user_id", sess.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if loc == nil {
		c.JSON(http.StatusOK, gin.H{"latitude": nil, "longitude": nil, "last_updated_at": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"latitude":        loc.Latitude,
		"longitude":       loc.Longitude,
		"last_updated_at": loc.LastUpdatedAt,
	})
}

// GetMyPlace reverse geocodes the caller's stored position.
func (h *LocationHandler) GetMyPlace(c *gin.Context) {
	sess := middleware.GetSession(c)
	place, err := h.svc.Place(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoLocation) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		slog.Warn("reverse geocode failed", "component", "location", "user_id", sess.UserID, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not resolve place"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"place": place, "label": place.Label()})
}
