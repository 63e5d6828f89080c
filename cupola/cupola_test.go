package cupola

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navuxneeth/NASA-Challenge/orbit"
)

// groundTrack moves the ISS east along the equator one degree per minute
// from lon0 at t0.
type groundTrack struct {
	t0   time.Time
	lon0 float64
}

func (g groundTrack) At(t time.Time) (orbit.Position, error) {
	return orbit.Position{Time: t, Longitude: g.lon0 + t.Sub(g.t0).Minutes()}, nil
}

var equator = Mission{ID: "eq", Title: "Equator", Category: "Volcanoes", Latitude: 0, Longitude: 0}

func TestGroundDistance(t *testing.T) {
	assert.InDelta(t, 0, GroundDistance(10, 20, 10, 20), 1e-9)
	assert.InDelta(t, EarthRadius*math.Pi/180, GroundDistance(0, 0, 1, 0), 1e-6)
	assert.InDelta(t, EarthRadius*math.Pi, GroundDistance(0, 0, 0, 180), 1e-6)
	// across the antimeridian
	assert.InDelta(t, GroundDistance(0, 179.5, 0, -179.5), GroundDistance(0, 0, 0, 1), 1e-6)
}

func TestCheckAndCapture(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	var captured []Capture
	m := NewManager(groundTrack{t0: t0, lon0: -10},
		WithMissions([]Mission{equator}),
		WithCaptureObserver(func(c Capture) { captured = append(captured, c) }),
	)

	_, err := m.Check(t0)
	assert.ErrorIs(t, err, ErrNoMission)

	mission, err := m.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eq", mission.ID)

	st, err := m.Check(t0)
	require.NoError(t, err)
	assert.InDelta(t, 1112, st.Distance, 1)
	assert.False(t, st.InRange)

	_, err = m.Capture(ctx, t0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Empty(t, captured)

	c, err := m.Capture(ctx, t0.Add(8*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "eq", c.Mission.ID)
	assert.Equal(t, "Volcanic eruption captured from orbit", c.Photo.Description)
	assert.Less(t, c.Distance, DefaultRange)
	assert.Equal(t, "eq", c.Next.ID)
	assert.Len(t, captured, 1)
}

func TestRangeBoundaryIsInclusive(t *testing.T) {
	t0 := time.Unix(0, 0)
	m := NewManager(groundTrack{t0: t0, lon0: 0}, WithMissions([]Mission{equator}), WithRange(GroundDistance(0, 0, 0, 3)))
	_, err := m.Select("eq")
	require.NoError(t, err)

	st, err := m.Check(t0.Add(3 * time.Minute))
	require.NoError(t, err)
	assert.True(t, st.InRange)
}

func TestNextPass(t *testing.T) {
	ctx := context.Background()
	t0 := time.Unix(0, 0).UTC()
	m := NewManager(groundTrack{t0: t0, lon0: -30}, WithMissions([]Mission{equator}))
	_, err := m.Select("eq")
	require.NoError(t, err)

	st, ok, err := m.NextPass(ctx, t0, time.Hour, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	// 500 km is about 4.5 degrees of longitude at the equator.
	assert.Equal(t, t0.Add(26*time.Minute), st.ISS.Time)

	st, ok, err = m.NextPass(ctx, t0, 10*time.Minute, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, t0.Add(10*time.Minute), st.ISS.Time, "closest approach is the last sample")

	_, _, err = m.NextPass(ctx, t0, time.Hour, 0)
	assert.Error(t, err)
}

func TestSelectUnknownMission(t *testing.T) {
	m := NewManager(groundTrack{})
	_, err := m.Select("nope")
	assert.ErrorIs(t, err, ErrNoMission)

	empty := NewManager(groundTrack{}, WithMissions(nil))
	_, err = empty.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoMission)
}

func TestStartIsSeeded(t *testing.T) {
	pick := func() string {
		m := NewManager(groundTrack{}, WithRand(rand.New(rand.NewPCG(7, 7))))
		ms, err := m.Start(context.Background())
		require.NoError(t, err)
		return ms.ID
	}
	assert.Equal(t, pick(), pick())
}

func TestCaptureOverTrackedISS(t *testing.T) {
	tr := orbit.DefaultTracker()
	pos, err := tr.At(tr.Epoch())
	require.NoError(t, err)

	m := NewManager(tr, WithMissions([]Mission{{
		ID: "below", Title: "Sub-satellite point", Latitude: pos.Latitude, Longitude: pos.Longitude,
	}}))
	_, err = m.Select("below")
	require.NoError(t, err)

	c, err := m.Capture(context.Background(), tr.Epoch())
	require.NoError(t, err)
	assert.InDelta(t, 0, c.Distance, 1e-6)
	assert.Equal(t, PhotoFor("").URL, c.Photo.URL)

	// Half an orbit later the station is on the other side of the planet.
	st, err := m.Check(tr.Epoch().Add(46 * time.Minute))
	require.NoError(t, err)
	assert.False(t, st.InRange)
}

func TestParseMissions(t *testing.T) {
	doc := `
- id: etna
  title: Mount Etna
  category: Volcanoes
  lat: 37.75
  lon: 14.99
- id: custom
  title: Somewhere
  category: Unknown
  lat: -10
  lon: 20
  scientific_value: Because.
`
	ms, err := ParseMissions(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 37.75, ms[0].Latitude)
	assert.Equal(t, ScientificValue("Volcanoes"), ms[0].ScientificValue)
	assert.Equal(t, "Because.", ms[1].ScientificValue)

	_, err = ParseMissions(strings.NewReader("- id: x\n  title: X\n  lat: 95\n  lon: 0\n"))
	assert.Error(t, err)
	_, err = ParseMissions(strings.NewReader("- title: untitled\n"))
	assert.Error(t, err)
}

func TestFallbackMissionsAreComplete(t *testing.T) {
	for _, m := range FallbackMissions() {
		assert.NotEmpty(t, m.ScientificValue, m.ID)
		assert.NotEmpty(t, m.Category, m.ID)
	}
	assert.Equal(t, defaultScientificValue, ScientificValue("Meteors"))
}
