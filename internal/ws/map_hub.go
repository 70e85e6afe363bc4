package ws

import (
	"encoding/json"
	"sort"
	"sync"

	"meetmap/internal/events"
)

// MapMarker is a user's last stored location on the live map.
type MapMarker struct {
	UserID    uint    `json:"user_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	UpdatedAt int64   `json:"updated_at"`
}

// MapHub keeps the latest marker per user and streams changes to map viewers.
// It is the events.Sink for location updates.
type MapHub struct {
	*Hub
	mu      sync.RWMutex
	markers map[uint]MapMarker
}

func NewMapHub() *MapHub {
	return &MapHub{
		Hub:     NewHub(),
		markers: make(map[uint]MapMarker),
	}
}

func markerFrom(ev events.LocationEvent) MapMarker {
	return MapMarker{UserID: ev.UserID, Lat: ev.Latitude, Lng: ev.Longitude, UpdatedAt: ev.UpdatedAt}
}

// Seed loads stored locations without broadcasting, for startup.
func (m *MapHub) Seed(list []events.LocationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range list {
		m.markers[ev.UserID] = markerFrom(ev)
	}
}

// UpdateLocation replaces the user's marker and broadcasts it. Events older
// than the current marker are ignored.
func (m *MapHub) UpdateLocation(ev events.LocationEvent) {
	marker := markerFrom(ev)
	m.mu.Lock()
	if cur, ok := m.markers[ev.UserID]; ok && cur.UpdatedAt > marker.UpdatedAt {
		m.mu.Unlock()
		return
	}
	m.markers[ev.UserID] = marker
	m.mu.Unlock()
	m.BroadcastAll(map[string]interface{}{"type": "marker", "marker": marker})
}

// GetMarkers returns every marker ordered by user ID (for initial map load).
func (m *MapHub) GetMarkers() []MapMarker {
	m.mu.RLock()
	list := make([]MapMarker, 0, len(m.markers))
	for _, v := range m.markers {
		list = append(list, v)
	}
	m.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
	return list
}

func markersMessage(markers []MapMarker) []byte {
	data, _ := json.Marshal(map[string]interface{}{"type": "markers", "markers": markers})
	return data
}
