package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"meetmap/internal/middleware"
	"meetmap/internal/models"
	"meetmap/internal/service"
	"meetmap/pkg/location"
	"meetmap/pkg/nearby"

	"github.com/gin-gonic/gin"
)

type NearbyHandler struct {
	svc *service.NearbyService
}

func NewNearbyHandler(svc *service.NearbyService) *NearbyHandler {
	return &NearbyHandler{svc: svc}
}

// nearbyUser is one rendered roster row. Unknown distances are null with an
// empty label.
type nearbyUser struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	PhotoURL      string             `json:"photo_url"`
	Location      *location.GeoPoint `json:"location"`
	DistanceKm    *float64           `json:"distance_km"`
	DistanceLabel string             `json:"distance_label"`
}

func renderNearby(a nearby.Annotated) nearbyUser {
	out := nearbyUser{
		ID:       a.UserID,
		Name:     a.Name,
		Email:    a.Email,
		PhotoURL: a.PhotoURL,
		Location: a.Location,
	}
	if a.Known() {
		d := *a.DistanceKm
		out.DistanceKm = &d
		out.DistanceLabel = a.DistanceLabel
	}
	return out
}

// queryFix reads the device fix from ?lat=&lng=. Anything missing or
// unparsable means no fix.
func queryFix(c *gin.Context) *location.GeoPoint {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	return &location.GeoPoint{Latitude: lat, Longitude: lng}
}

// Nearby lists every other user annotated with the distance from the caller.
func (h *NearbyHandler) Nearby(c *gin.Context) {
	sess := middleware.GetSession(c)
	res, err := h.svc.Nearby(c.Request.Context(), sess, queryFix(c))
	if err != nil {
		slog.Error("nearby failed", "component", "nearby", "user_id", sess.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	users := make([]nearbyUser, len(res.Entries))
	for i, a := range res.Entries {
		users[i] = renderNearby(a)
	}
	c.JSON(http.StatusOK, gin.H{
		"self":        res.Self,
		"self_source": res.SelfSource,
		"users":       users,
	})
}

// Users is the plain roster of every other user.
func (h *NearbyHandler) Users(c *gin.Context) {
	sess := middleware.GetSession(c)
	list, err := h.svc.Roster(c.Request.Context(), sess)
	if err != nil {
		slog.Error("roster failed", "component", "nearby", "user_id", sess.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	if list == nil {
		list = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}
