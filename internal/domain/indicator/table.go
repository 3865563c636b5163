package indicator

import (
	"sort"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Lookup is the read contract the vector calculator needs from the dataset.
type Lookup interface {
	// Sum adds every value of dimension d observed for (state, year).
	// It returns 0 when nothing matches; callers check Has first.
	Sum(d Dimension, state, year string) float64

	// Has reports whether at least one observation exists for (state, year).
	Has(state, year string) bool
}

type cellKey struct {
	state string
	year  string
}

// Table is the immutable, in-memory indicator dataset.  It is built once at
// startup and shared by every request without locking; no method mutates it
// and accessors return copies.
type Table struct {
	observations []Observation
	cells        map[cellKey]map[Dimension][]float64
	regions      map[cellKey]string
	states       []string
	years        []string
}

var _ Lookup = (*Table)(nil)

// NewTable indexes the given observations.  The input slice is copied.
func NewTable(observations []Observation) (*Table, error) {
	t := &Table{
		observations: make([]Observation, 0, len(observations)),
		cells:        make(map[cellKey]map[Dimension][]float64),
		regions:      make(map[cellKey]string),
	}

	stateSet := make(map[string]struct{})
	yearSet := make(map[string]struct{})

	for i, o := range observations {
		if !o.Dimension.IsValid() {
			return nil, errors.Newf(errors.ErrCodeDimensionUnknown, "observation %d has unknown dimension %q", i, o.Dimension)
		}
		if o.State == "" || o.Year == "" {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "observation %d is missing state or year", i)
		}

		k := cellKey{state: o.State, year: o.Year}
		dims, ok := t.cells[k]
		if !ok {
			dims = make(map[Dimension][]float64, len(Dimensions))
			t.cells[k] = dims
		}
		dims[o.Dimension] = append(dims[o.Dimension], o.Value)
		if _, seen := t.regions[k]; !seen {
			t.regions[k] = o.Region
		}

		stateSet[o.State] = struct{}{}
		yearSet[o.Year] = struct{}{}
		t.observations = append(t.observations, o)
	}

	t.states = sortedKeys(stateSet)
	t.years = sortedKeys(yearSet)
	return t, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Sum adds the values of dimension d over the subset filtered by (state, year).
func (t *Table) Sum(d Dimension, state, year string) float64 {
	var total float64
	for _, v := range t.cells[cellKey{state: state, year: year}][d] {
		total += v
	}
	return total
}

// Has reports whether any observation matches (state, year).
func (t *Table) Has(state, year string) bool {
	_, ok := t.cells[cellKey{state: state, year: year}]
	return ok
}

// States returns the sorted, de-duplicated state options.
func (t *Table) States() []string {
	return append([]string(nil), t.states...)
}

// Years returns the sorted, de-duplicated year options.
func (t *Table) Years() []string {
	return append([]string(nil), t.years...)
}

// Len returns the number of observations in the table.
func (t *Table) Len() int { return len(t.observations) }

// DefaultSelection is the first state and the first year, the initial value
// of both dashboard selectors.  ok is false for an empty table.
func (t *Table) DefaultSelection() (sel Selection, ok bool) {
	if len(t.states) == 0 || len(t.years) == 0 {
		return Selection{}, false
	}
	return Selection{State: t.states[0], Year: t.years[0]}, true
}

// Records returns the three-score view of every (state, year) present, ordered
// by state then year.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.cells))
	for _, state := range t.states {
		for _, year := range t.years {
			k := cellKey{state: state, year: year}
			if _, ok := t.cells[k]; !ok {
				continue
			}
			out = append(out, Record{
				Region:        t.regions[k],
				State:         state,
				Year:          year,
				Equity:        t.Sum(DimensionEquity, state, year),
				Security:      t.Sum(DimensionSecurity, state, year),
				Environmental: t.Sum(DimensionEnvironmental, state, year),
			})
		}
	}
	return out
}

//Personal.AI order the ending
