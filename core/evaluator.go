package core

import (
	"github.com/navuxneeth/NASA-Challenge/model"
)

// Evaluation is the evaluator's view of one frame.
type Evaluation struct {
	Distance       float64
	Speed          float64
	AlignmentError float64
	Advisory       model.Advisory
}

// Evaluate classifies the spacecraft against the station's docking port.
func Evaluate(s model.Spacecraft, st model.Station, cfg Config) Evaluation {
	ev := Evaluation{
		Distance:       Distance(s.Position, st.Port()),
		Speed:          s.Speed(),
		AlignmentError: AngleError(s.Heading, st.DockingHeading),
	}
	ev.Advisory = Classify(ev.Distance, ev.Speed, ev.AlignmentError, cfg)
	return ev
}

// Classify applies the docking decision policy to precomputed measurements.
//
// Inside the capture radius a slow, aligned approach docks, excess speed
// collides regardless of alignment, and a slow but misaligned approach is only
// advisory. Between the capture and approach radii the spacecraft is
// approaching; beyond that nothing is reported.
func Classify(distance, speed, alignmentError float64, cfg Config) model.Advisory {
	switch {
	case distance < cfg.CaptureRadius:
		switch {
		case speed < cfg.SpeedThreshold && alignmentError < cfg.AngleThreshold:
			return model.AdvisorySuccess
		case speed >= cfg.SpeedThreshold:
			return model.AdvisoryCollision
		default:
			return model.AdvisoryMisaligned
		}
	case distance < cfg.ApproachRadius:
		return model.AdvisoryApproaching
	default:
		return model.AdvisoryNone
	}
}

// StatusFor returns the status line shown for an advisory.
func StatusFor(a model.Advisory) model.Status {
	switch a {
	case model.AdvisoryApproaching:
		return model.Status{Text: "Approaching docking port", Severity: model.SeverityAdvisory}
	case model.AdvisoryMisaligned:
		return model.Status{Text: "Misaligned! Rotate to align with the port.", Severity: model.SeverityAdvisory}
	case model.AdvisorySuccess:
		return model.Status{Text: "✓ Docking Successful!", Severity: model.SeveritySuccess}
	case model.AdvisoryCollision:
		return model.Status{Text: "✗ Collision! Approach slower.", Severity: model.SeverityFailure}
	default:
		return model.Status{Severity: model.SeverityNeutral}
	}
}
