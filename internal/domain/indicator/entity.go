// Package indicator models the energy-trilemma indicator dataset: the three
// trilemma dimensions, the melted per-cell observations read from the
// spreadsheet, and the immutable Table the dashboard queries per selection.
package indicator

import (
	"strings"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Dimension is one of the three trilemma indicator categories.
type Dimension string

const (
	DimensionEquity        Dimension = "Equity"
	DimensionSecurity      Dimension = "Security"
	DimensionEnvironmental Dimension = "Environmental"
)

// Dimensions lists the trilemma dimensions in vector-axis order (x, y, z).
var Dimensions = []Dimension{DimensionEquity, DimensionSecurity, DimensionEnvironmental}

func (d Dimension) String() string { return string(d) }

// IsValid reports whether d is one of the three known dimensions.
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionEquity, DimensionSecurity, DimensionEnvironmental:
		return true
	}
	return false
}

// dimensionAliases maps lower-cased header words to dimensions.  The
// Portuguese names are the headers of the published Brazilian trilemma sheet.
var dimensionAliases = map[string]Dimension{
	"equity":        DimensionEquity,
	"equidade":      DimensionEquity,
	"security":      DimensionSecurity,
	"segurança":     DimensionSecurity,
	"seguranca":     DimensionSecurity,
	"environmental": DimensionEnvironmental,
	"environment":   DimensionEnvironmental,
	"ambiental":     DimensionEnvironmental,
}

// ParseDimension resolves a header word such as "Equidade" or "security".
func ParseDimension(s string) (Dimension, error) {
	if d, ok := dimensionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", errors.Newf(errors.ErrCodeDimensionUnknown, "unknown trilemma dimension %q", s)
}

// Observation is a single melted spreadsheet cell: one score of one dimension
// for one (region, state, year).
type Observation struct {
	Region    string    `json:"region"`
	State     string    `json:"state"`
	Year      string    `json:"year"`
	Dimension Dimension `json:"dimension"`
	Value     float64   `json:"value"`
}

// Record is the three-score view of one (region, state, year) row.
type Record struct {
	Region        string  `json:"region"`
	State         string  `json:"state"`
	Year          string  `json:"year"`
	Equity        float64 `json:"equity"`
	Security      float64 `json:"security"`
	Environmental float64 `json:"environmental"`
}

// Selection is the (state, year) pair chosen by the user.
type Selection struct {
	State string `json:"state"`
	Year  string `json:"year"`
}

// Validate checks that both parts of the selection are present.
func (s Selection) Validate() error {
	if strings.TrimSpace(s.State) == "" {
		return errors.New(errors.ErrCodeValidation, "state is required")
	}
	if strings.TrimSpace(s.Year) == "" {
		return errors.New(errors.ErrCodeValidation, "year is required")
	}
	return nil
}

func (s Selection) String() string {
	return "state=" + s.State + " year=" + s.Year
}

//Personal.AI order the ending
