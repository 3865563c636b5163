package dashboard

import (
	"fmt"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/vector"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Placeholder replaces the value of a readout whose angle is undefined.
const Placeholder = "n/a"

// Readout keys, stable across the HTML page, the JSON API and emitted events.
const (
	KeyIdealX                = "ideal_x"
	KeyIdealY                = "ideal_y"
	KeyIdealZ                = "ideal_z"
	KeyGenericX              = "generic_x"
	KeyGenericY              = "generic_y"
	KeyGenericZ              = "generic_z"
	KeyGenericIdeal          = "generic_ideal"
	KeyEnvironmentalSecurity = "environmental_security"
	KeyEnvironmentalEquity   = "environmental_equity"
	KeySecurityEquity        = "security_equity"
)

// Point is a JSON-friendly vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func pointOf(v vector.Vec3) Point { return Point{X: v.X, Y: v.Y, Z: v.Z} }

// Vec3 converts p back to the domain vector.
func (p Point) Vec3() vector.Vec3 { return vector.New(p.X, p.Y, p.Z) }

// Readout is one formatted angle line.
type Readout struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	// Value is "%.2f°" or Placeholder.
	Value string `json:"value"`
	// Degrees is nil when the angle is undefined.
	Degrees   *float64 `json:"degrees"`
	Error     string   `json:"error,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
}

// Text is the full readout line, e.g. "Ideal vector with X axis: 54.74°".
func (r Readout) Text() string { return r.Label + ": " + r.Value }

// Defined reports whether the angle was computable.
func (r Readout) Defined() bool { return r.Degrees != nil }

// ReadoutGroup is a titled block of readouts on the dashboard.
type ReadoutGroup struct {
	Heading  string    `json:"heading,omitempty"`
	Readouts []Readout `json:"readouts"`
}

// ViewModel is everything the rendering layer needs for one selection.
type ViewModel struct {
	Selection indicator.Selection `json:"selection"`
	Title     string              `json:"title"`
	Generic   Point               `json:"generic"`
	Ideal     Point               `json:"ideal"`
	Groups    []ReadoutGroup      `json:"groups"`
}

// Readout returns the readout stored under key.
func (vm *ViewModel) Readout(key string) (Readout, bool) {
	for _, g := range vm.Groups {
		for _, r := range g.Readouts {
			if r.Key == key {
				return r, true
			}
		}
	}
	return Readout{}, false
}

// UndefinedKeys lists the keys of readouts showing the placeholder.
func (vm *ViewModel) UndefinedKeys() []string {
	var out []string
	for _, g := range vm.Groups {
		for _, r := range g.Readouts {
			if !r.Defined() {
				out = append(out, r.Key)
			}
		}
	}
	return out
}

// ChartTitle is the heading of the 3D plot for state.
func ChartTitle(state string) string {
	return "Interactive 3D Vectors - State: " + state
}

// FormatDegrees renders an angle with two decimals and a degree sign.
func FormatDegrees(deg float64) string {
	return fmt.Sprintf("%.2f°", deg)
}

func newReadout(key, label string, m vector.Measure) Readout {
	r := Readout{Key: key, Label: label}
	if !m.Defined() {
		r.Value = Placeholder
		r.Error = m.Err.Error()
		r.ErrorCode = errors.GetCode(m.Err).String()
		return r
	}
	deg := m.Degrees
	r.Degrees = &deg
	r.Value = FormatDegrees(deg)
	return r
}

func buildGroups(a vector.AngleSet) []ReadoutGroup {
	return []ReadoutGroup{
		{
			Heading: "Each axis compared with the ideal vector",
			Readouts: []Readout{
				newReadout(KeyIdealX, "Ideal vector with X axis", a.IdealX),
				newReadout(KeyIdealY, "Ideal vector with Y axis", a.IdealY),
				newReadout(KeyIdealZ, "Ideal vector with Z axis", a.IdealZ),
			},
		},
		{
			Heading: "Each axis compared with the generic vector",
			Readouts: []Readout{
				newReadout(KeyGenericX, "Generic vector with X axis", a.GenericX),
				newReadout(KeyGenericY, "Generic vector with Y axis", a.GenericY),
				newReadout(KeyGenericZ, "Generic vector with Z axis", a.GenericZ),
			},
		},
		{
			Readouts: []Readout{
				newReadout(KeyGenericIdeal, "Angle between generic and ideal vector", a.GenericIdeal),
			},
		},
		{
			Heading: "Dimensions compared among themselves",
			Readouts: []Readout{
				newReadout(KeyEnvironmentalSecurity, "Angle between environmental and security", a.EnvironmentalSecurity),
				newReadout(KeyEnvironmentalEquity, "Angle between environmental and equity", a.EnvironmentalEquity),
				newReadout(KeySecurityEquity, "Angle between security and equity", a.SecurityEquity),
			},
		},
	}
}

//Personal.AI order the ending
