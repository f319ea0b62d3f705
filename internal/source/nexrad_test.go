package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNEXRAD_DiscoverFrames(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2026, 1, 15, 12, 3, 20, 0, time.UTC))
	domain.SetClock(clk)
	defer domain.SetClock(nil)

	n := NewNEXRAD(2*time.Second, discardLogger())
	frames, err := n.DiscoverFrames(context.Background())
	require.NoError(t, err)
	require.Len(t, frames, 11)

	// Oldest first, aligned to the 5-minute cache boundary.
	assert.Equal(t, time.Date(2026, 1, 15, 11, 10, 0, 0, time.UTC), frames[0].Time)
	assert.Equal(t, "nexrad-n0q-900913-m50m", frames[0].Identifier)

	last := frames[len(frames)-1]
	assert.Equal(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC), last.Time)
	assert.Equal(t, "nexrad-n0q-900913", last.Identifier, "newest frame uses the live layer")

	for i := 1; i < len(frames); i++ {
		assert.Equal(t, 5*time.Minute, frames[i].Time.Sub(frames[i-1].Time))
		assert.Equal(t, "nexrad", frames[i].Source)
	}
}

func TestNEXRAD_FetchTile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nexrad-n0q-900913-m10m/6/18/23.png", r.URL.Path)
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	n := NewNEXRAD(2*time.Second, discardLogger())
	n.baseURL = srv.URL

	frame := domain.RadarFrame{Source: "nexrad", Identifier: "nexrad-n0q-900913-m10m"}
	data, err := n.FetchTile(context.Background(), frame, 6, 18, 23)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestNEXRAD_FetchTile_ForeignFrameIsNil(t *testing.T) {
	n := NewNEXRAD(2*time.Second, discardLogger())

	data, err := n.FetchTile(context.Background(), domain.RadarFrame{Source: "rainviewer"}, 6, 18, 23)
	assert.NoError(t, err)
	assert.Nil(t, data)
}
