// Package vector holds the geometry of the trilemma view: the generic vector
// built from a selection's three scores, the fixed ideal vector, and the
// inclination angles derived from them.
package vector

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point in (Equity, Security, Environmental) space with its tail at
// the origin.
type Vec3 = r3.Vec

// IdealScore is the maximal score on every trilemma dimension.
const IdealScore = 10.0

// Ideal returns the reference vector (10, 10, 10).  It is returned by value so
// no caller can alter it.
func Ideal() Vec3 { return Vec3{X: IdealScore, Y: IdealScore, Z: IdealScore} }

// Origin is the common tail of both plotted vectors.
func Origin() Vec3 { return Vec3{} }

// AxisX, AxisY and AxisZ are the unit vectors of the Equity, Security and
// Environmental axes.
func AxisX() Vec3 { return Vec3{X: 1} }
func AxisY() Vec3 { return Vec3{Y: 1} }
func AxisZ() Vec3 { return Vec3{Z: 1} }

// New assembles a generic vector from the three dimension scores.
func New(equity, security, environmental float64) Vec3 {
	return Vec3{X: equity, Y: security, Z: environmental}
}

// Magnitude is the Euclidean norm of v.
func Magnitude(v Vec3) float64 { return r3.Norm(v) }

func isFinite(v Vec3) bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

//Personal.AI order the ending
