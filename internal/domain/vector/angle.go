package vector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// AngleBetween returns the angle in degrees between v and w, in [0, 180].
//
// The cosine is clamped to [-1, 1] before the inverse cosine so rounding
// overshoot never produces NaN.  A zero-magnitude or non-finite operand has no
// direction and yields ErrCodeUndefinedAngle.
func AngleBetween(v, w Vec3) (float64, error) {
	if !isFinite(v) || !isFinite(w) {
		return 0, errors.New(errors.ErrCodeUndefinedAngle, "vector has a non-finite component").
			WithDetail(fmt.Sprintf("v=%v w=%v", v, w))
	}
	nv, nw := r3.Norm(v), r3.Norm(w)
	if nv == 0 || nw == 0 {
		return 0, errors.New(errors.ErrCodeUndefinedAngle, "angle with a zero-magnitude vector").
			WithDetail(fmt.Sprintf("v=%v w=%v", v, w))
	}
	cos := r3.Dot(v, w) / (nv * nw)
	cos = math.Max(-1, math.Min(1, cos))
	return degrees(math.Acos(cos)), nil
}

// AngleToAxis is AngleBetween with a coordinate axis as second operand.
func AngleToAxis(v, axis Vec3) (float64, error) {
	return AngleBetween(v, axis)
}

// AngleFromRatio returns degrees(atan(a/b)): the angle of the right triangle
// whose legs are the two dimension scores.  b == 0 yields
// ErrCodeUndefinedAngle instead of 90° or an infinity.
func AngleFromRatio(a, b float64) (float64, error) {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, errors.New(errors.ErrCodeUndefinedAngle, "ratio operand is not finite").
			WithDetail(fmt.Sprintf("a=%g b=%g", a, b))
	}
	if b == 0 {
		return 0, errors.New(errors.ErrCodeUndefinedAngle, "ratio with a zero denominator").
			WithDetail(fmt.Sprintf("a=%g b=%g", a, b))
	}
	return degrees(math.Atan(a / b)), nil
}

// Measure is one angle of an AngleSet.  Err is set when the angle is
// undefined for the current vectors; Degrees is then meaningless.
type Measure struct {
	Degrees float64
	Err     error
}

// Defined reports whether the angle could be computed.
func (m Measure) Defined() bool { return m.Err == nil }

func measure(deg float64, err error) Measure {
	if err != nil {
		return Measure{Err: err}
	}
	return Measure{Degrees: deg}
}

// AngleSet holds every inclination angle shown next to the plot.
type AngleSet struct {
	IdealX, IdealY, IdealZ       Measure
	GenericX, GenericY, GenericZ Measure
	GenericIdeal                 Measure

	// Pairwise axis-ratio angles between the three scores.
	EnvironmentalSecurity Measure
	EnvironmentalEquity   Measure
	SecurityEquity        Measure
}

// Angles computes the AngleSet of generic against the axes and the ideal
// vector.  Each angle fails on its own; one undefined angle never hides the
// others.
func Angles(generic Vec3) AngleSet {
	ideal := Ideal()
	return AngleSet{
		IdealX: measure(AngleToAxis(ideal, AxisX())),
		IdealY: measure(AngleToAxis(ideal, AxisY())),
		IdealZ: measure(AngleToAxis(ideal, AxisZ())),

		GenericX: measure(AngleToAxis(generic, AxisX())),
		GenericY: measure(AngleToAxis(generic, AxisY())),
		GenericZ: measure(AngleToAxis(generic, AxisZ())),

		GenericIdeal: measure(AngleBetween(ideal, generic)),

		EnvironmentalSecurity: measure(AngleFromRatio(generic.Z, generic.Y)),
		EnvironmentalEquity:   measure(AngleFromRatio(generic.Z, generic.X)),
		SecurityEquity:        measure(AngleFromRatio(generic.Y, generic.X)),
	}
}

//Personal.AI order the ending
