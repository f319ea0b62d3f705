package kafka

import (
	"context"
	"testing"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToPoint(t *testing.T) {
	msg := kafkago.Message{
		Key: []byte("loon-mountain"),
		Value: []byte(`{
			"resortId": "loon-mountain",
			"resortName": "Loon Mountain",
			"lat": 44.0364,
			"lon": -71.6214,
			"recentSnowfall": 6.5,
			"snowDepth": 42,
			"baseTemp": 22.5,
			"windSpeed": 12,
			"visibility": 8.5
		}`),
	}

	point, err := mapMessageToPoint(msg)
	require.NoError(t, err)

	assert.Equal(t, "loon-mountain", point.ID)
	assert.Equal(t, "Loon Mountain", point.Name)
	assert.Equal(t, 44.0364, point.Lat)
	assert.Equal(t, -71.6214, point.Lon)
	assert.Equal(t, 6.5, point.RecentSnowfall)
	assert.Equal(t, 42.0, point.SnowDepth)
	assert.Equal(t, 22.5, point.BaseTemp)
	assert.Equal(t, 12.0, point.WindSpeed)
	assert.Equal(t, 8.5, point.Visibility)
}

func TestMapMessageToPoint_FallsBackToKey(t *testing.T) {
	msg := kafkago.Message{
		Key:   []byte("bretton-woods"),
		Value: []byte(`{"lat": 44.2587, "lon": -71.4398, "recentSnowfall": 2}`),
	}

	point, err := mapMessageToPoint(msg)
	require.NoError(t, err)
	assert.Equal(t, "bretton-woods", point.ID)
}

func TestMapMessageToPoint_Invalid(t *testing.T) {
	tests := []struct {
		name string
		msg  kafkago.Message
	}{
		{
			name: "malformed json",
			msg:  kafkago.Message{Key: []byte("k"), Value: []byte("not-json{{{")},
		},
		{
			name: "missing resort id",
			msg:  kafkago.Message{Value: []byte(`{"lat": 44.0, "lon": -71.0}`)},
		},
		{
			name: "zero coordinates",
			msg:  kafkago.Message{Key: []byte("k"), Value: []byte(`{"resortId": "r", "recentSnowfall": 3}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapMessageToPoint(tt.msg)
			assert.Error(t, err)
		})
	}
}

func TestFeedCurrent_LatestPerResort(t *testing.T) {
	feed := &Feed{latest: make(map[string]domain.ObservationPoint)}

	msgs := []kafkago.Message{
		{Key: []byte("cannon"), Value: []byte(`{"resortId":"cannon","lat":44.16,"lon":-71.70,"recentSnowfall":3}`)},
		{Key: []byte("wildcat"), Value: []byte(`{"resortId":"wildcat","lat":44.26,"lon":-71.24,"recentSnowfall":1}`)},
		{Key: []byte("cannon"), Value: []byte(`{"resortId":"cannon","lat":44.16,"lon":-71.70,"recentSnowfall":8}`)},
	}
	for _, msg := range msgs {
		point, err := mapMessageToPoint(msg)
		require.NoError(t, err)
		feed.latest[point.ID] = point
	}

	points, err := feed.Current(context.Background())
	require.NoError(t, err)
	assert.Len(t, points, 2)

	byID := map[string]float64{}
	for _, p := range points {
		byID[p.ID] = p.RecentSnowfall
	}
	assert.Equal(t, 8.0, byID["cannon"], "later snapshot should replace earlier")
	assert.Equal(t, 1.0, byID["wildcat"])
}
