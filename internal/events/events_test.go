package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	got []LocationEvent
}

func (r *recordingSink) UpdateLocation(ev LocationEvent) { r.got = append(r.got, ev) }

func TestLocal_DeliversToSink(t *testing.T) {
	sink := &recordingSink{}
	pub := NewLocal(sink)
	ev := LocationEvent{UserID: 3, Latitude: -23.5, Longitude: -46.6, UpdatedAt: 100}
	require.NoError(t, pub.PublishLocation(context.Background(), ev))
	assert.Equal(t, []LocationEvent{ev}, sink.got)
}

func TestDecodeLocationEvent(t *testing.T) {
	ev, err := decodeLocationEvent([]byte(`{"user_id":9,"lat":1.5,"lng":-2.25,"updated_at":7}`))
	require.NoError(t, err)
	assert.Equal(t, LocationEvent{UserID: 9, Latitude: 1.5, Longitude: -2.25, UpdatedAt: 7}, ev)

	_, err = decodeLocationEvent([]byte(`{"lat":1}`))
	assert.Error(t, err)
	_, err = decodeLocationEvent([]byte(`not json`))
	assert.Error(t, err)
}
