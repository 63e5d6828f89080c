package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/navuxneeth/NASA-Challenge/model"
)

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		distance float64
		speed    float64
		align    float64
		want     model.Advisory
	}{
		{"slow and aligned docks", 10, 5, 0.1, model.AdvisorySuccess},
		{"fast collides", 10, 25, 0.1, model.AdvisoryCollision},
		{"fast and misaligned still collides", 10, 25, 2.0, model.AdvisoryCollision},
		{"slow but misaligned", 10, 5, 1.0, model.AdvisoryMisaligned},
		{"far away is nominal", 200, 5, 0.1, model.AdvisoryNone},
		{"far away and fast is nominal", 200, 60, 2.0, model.AdvisoryNone},
		{"inside approach ring", 50, 25, 1.0, model.AdvisoryApproaching},

		{"speed exactly at threshold collides", 10, DefaultSpeedThreshold, 0, model.AdvisoryCollision},
		{"speed just below threshold docks", 10, math.Nextafter(DefaultSpeedThreshold, 0), 0, model.AdvisorySuccess},
		{"angle exactly at threshold is misaligned", 10, 1, DefaultAngleThreshold, model.AdvisoryMisaligned},
		{"angle just below threshold docks", 10, 1, math.Nextafter(DefaultAngleThreshold, 0), model.AdvisorySuccess},
		{"distance exactly at capture radius approaches", DefaultCaptureRadius, 1, 0, model.AdvisoryApproaching},
		{"distance just inside capture radius docks", math.Nextafter(DefaultCaptureRadius, 0), 1, 0, model.AdvisorySuccess},
		{"distance exactly at approach radius is nominal", DefaultApproachRadius, 1, 0, model.AdvisoryNone},
		{"distance just inside approach radius approaches", math.Nextafter(DefaultApproachRadius, 0), 1, 0, model.AdvisoryApproaching},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.distance, tt.speed, tt.align, cfg))
		})
	}
}

func TestEvaluateMeasuresAgainstPort(t *testing.T) {
	cfg := DefaultConfig()
	st := DefaultStation()
	port := st.Port()
	assert.Equal(t, model.Vec2{X: 200, Y: 85}, port)

	s := model.Spacecraft{
		Position: model.Vec2{X: port.X, Y: port.Y + 10},
		Velocity: model.Vec2{X: 3, Y: -4},
		Heading:  st.DockingHeading + 0.1,
	}
	ev := Evaluate(s, st, cfg)

	assert.InDelta(t, 10, ev.Distance, 1e-12)
	assert.InDelta(t, 5, ev.Speed, 1e-12)
	assert.InDelta(t, 0.1, ev.AlignmentError, 1e-12)
	assert.Equal(t, model.AdvisorySuccess, ev.Advisory)
}

func TestPortRadiusDoesNotAffectCapture(t *testing.T) {
	cfg := DefaultConfig()
	st := DefaultStation()
	port := st.Port()
	s := model.Spacecraft{
		Position: model.Vec2{X: port.X, Y: port.Y + DefaultCaptureRadius + 5},
		Heading:  st.DockingHeading,
	}

	wide := st
	wide.PortRadius = 100
	narrow := st
	narrow.PortRadius = 0

	assert.Equal(t, model.AdvisoryApproaching, Evaluate(s, wide, cfg).Advisory)
	assert.Equal(t, Evaluate(s, narrow, cfg), Evaluate(s, wide, cfg))
}

func TestEvaluateAlignmentIgnoresFullTurns(t *testing.T) {
	cfg := DefaultConfig()
	st := DefaultStation()
	port := st.Port()

	s := model.Spacecraft{
		Position: model.Vec2{X: port.X, Y: port.Y + 5},
		Heading:  st.DockingHeading + 2*math.Pi - 0.05,
	}
	ev := Evaluate(s, st, cfg)

	assert.InDelta(t, 0.05, ev.AlignmentError, 1e-9)
	assert.Equal(t, model.AdvisorySuccess, ev.Advisory)
}

func TestEvaluateFromStartIsNominal(t *testing.T) {
	cfg := DefaultConfig()
	st := DefaultStation()

	ev := Evaluate(InitialSpacecraft(cfg, st), st, cfg)
	assert.InDelta(t, 265, ev.Distance, 1e-9)
	assert.Equal(t, model.AdvisoryNone, ev.Advisory)
	assert.Equal(t, model.SeverityNeutral, StatusFor(ev.Advisory).Severity)
	assert.Empty(t, StatusFor(ev.Advisory).Text)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		advisory model.Advisory
		severity model.Severity
	}{
		{model.AdvisoryNone, model.SeverityNeutral},
		{model.AdvisoryApproaching, model.SeverityAdvisory},
		{model.AdvisoryMisaligned, model.SeverityAdvisory},
		{model.AdvisorySuccess, model.SeveritySuccess},
		{model.AdvisoryCollision, model.SeverityFailure},
	}
	for _, tt := range tests {
		t.Run(tt.advisory.String(), func(t *testing.T) {
			st := StatusFor(tt.advisory)
			assert.Equal(t, tt.severity, st.Severity)
			if tt.advisory != model.AdvisoryNone {
				assert.NotEmpty(t, st.Text)
			}
		})
	}
}
