package orbit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTrackerEpoch(t *testing.T) {
	tr := DefaultTracker()
	assert.Equal(t, DefaultName, tr.Name())
	assert.Equal(t, time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC), tr.Epoch())
}

func TestAtStaysInLowEarthOrbit(t *testing.T) {
	tr := DefaultTracker()
	track, err := tr.GroundTrack(tr.Epoch(), 10*time.Minute, 12)
	require.NoError(t, err)
	require.Len(t, track, 12)

	for _, p := range track {
		assert.LessOrEqual(t, p.Latitude, 52.0, "latitude bounded by inclination")
		assert.GreaterOrEqual(t, p.Latitude, -52.0)
		assert.GreaterOrEqual(t, p.Longitude, -180.0)
		assert.Less(t, p.Longitude, 180.0)
		assert.InDelta(t, 420, p.Altitude, 80)
		assert.InDelta(t, 7.66, p.Velocity, 0.3)
	}
	assert.NotEqual(t, track[0].Longitude, track[1].Longitude)
}

func TestNewTrackerRejectsMalformedLines(t *testing.T) {
	cases := map[string][2]string{
		"short line":          {DefaultLine1[:60], DefaultLine2},
		"swapped":             {DefaultLine2, DefaultLine1},
		"bad checksum":        {DefaultLine1[:68] + "0", DefaultLine2},
		"catalog":             {DefaultLine1, "2 25545" + DefaultLine2[7:68] + "2"},
		"eccentricity letter": {DefaultLine1, strings.Replace(DefaultLine2, "0006703", "O006703", 1)},
		"bstar letter":        {strings.Replace(DefaultLine1, "30153-3", "3O153-3", 1), DefaultLine2},
		"mean motion letter":  {DefaultLine1, strings.Replace(DefaultLine2, "15.49815350", "15.4981535O", 1)},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTracker("x", lines[0], lines[1])
			assert.ErrorIs(t, err, ErrInvalidTLE)
		})
	}
}

func TestWrapLongitude(t *testing.T) {
	assert.InDelta(t, -170, wrapLongitude(190), 1e-9)
	assert.InDelta(t, 170, wrapLongitude(-190), 1e-9)
	assert.InDelta(t, 0, wrapLongitude(720), 1e-9)
}
