package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/navuxneeth/NASA-Challenge/model"
)

// Distance returns the straight-line distance between two playfield points.
func Distance(a, b model.Vec2) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// HeadingVector returns the unit vector pointing along heading.
func HeadingVector(heading float64) model.Vec2 {
	return model.Vec2{X: math.Cos(heading), Y: math.Sin(heading)}
}

// WrapAngle maps an angle into (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleError returns the absolute angular difference between two headings,
// in [0, π]. Full turns are ignored.
func AngleError(heading, target float64) float64 {
	return math.Abs(WrapAngle(heading - target))
}
