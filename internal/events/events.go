// Package events carries stored location updates to the live map, either
// in-process or across server instances through NATS.
package events

import "context"

// LocationEvent is published after a user's stored location changes.
type LocationEvent struct {
	UserID    uint    `json:"user_id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	UpdatedAt int64   `json:"updated_at"`
}

// Sink receives location events; the live map hub implements it.
type Sink interface {
	UpdateLocation(ev LocationEvent)
}

// Local hands events straight to a Sink in the same process.
type Local struct {
	sink Sink
}

func NewLocal(sink Sink) *Local {
	return &Local{sink: sink}
}

func (l *Local) PublishLocation(_ context.Context, ev LocationEvent) error {
	l.sink.UpdateLocation(ev)
	return nil
}
