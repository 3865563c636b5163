package dataset

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

var (
	regionHeaders = map[string]bool{"region": true, "região": true, "regiao": true}
	stateHeaders  = map[string]bool{"state": true, "estado": true, "uf": true}

	// missingMarkers are the cell spellings sheets use for "no data".
	missingMarkers = map[string]bool{
		"-": true, "\u2013": true, "\u2014": true, "--": true, "...": true, "\u2026": true,
		"n/a": true, "na": true, "n/d": true, "nd": true, "s/d": true,
		"nan": true, "null": true, "#n/a": true,
	}
)

// valueColumn is a "<Dimension> <Year>" header resolved to its parts.
type valueColumn struct {
	index     int
	header    string
	dimension indicator.Dimension
	year      string
}

// MeltOptions tunes Melt.
type MeltOptions struct {
	// IgnoreUnknownColumns skips value columns whose dimension word is not a
	// trilemma dimension instead of failing.
	IgnoreUnknownColumns bool
	Logger               logging.Logger
}

// Melt turns the wide sheet (one row per region/state, one column per
// dimension and year) into long-format observations.  The first row is the
// header.  The year of a value column is the last four characters of its
// header and the dimension is the text before them.
func Melt(rows [][]string, opts MeltOptions) ([]indicator.Observation, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetInvalid, "dataset is empty")
	}

	header := rows[0]
	regionIdx, stateIdx := -1, -1
	var cols []valueColumn
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch {
		case key == "":
			continue
		case regionHeaders[key]:
			regionIdx = i
		case stateHeaders[key]:
			stateIdx = i
		default:
			col, ok, err := parseValueHeader(i, h)
			if err != nil {
				if opts.IgnoreUnknownColumns {
					log.Warn("ignoring column", logging.String("column", h), logging.Err(err))
					continue
				}
				return nil, err
			}
			if !ok {
				log.Debug("skipping non-indicator column", logging.String("column", h))
				continue
			}
			cols = append(cols, col)
		}
	}
	if stateIdx < 0 {
		return nil, errors.New(errors.ErrCodeDatasetInvalid, "missing state column").
			WithDetail("expected one of State, Estado, UF")
	}
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetInvalid, "no '<Dimension> <Year>' columns found")
	}

	var out []indicator.Observation
	skipped := 0
	for r, row := range rows[1:] {
		state := strings.TrimSpace(cell(row, stateIdx))
		if state == "" {
			continue
		}
		region := strings.TrimSpace(cell(row, regionIdx))
		for _, c := range cols {
			raw := strings.TrimSpace(cell(row, c.index))
			if raw == "" {
				continue
			}
			if missingMarkers[strings.ToLower(raw)] {
				log.Warn("skipping missing score",
					logging.Int("row", r+2),
					logging.String("column", c.header),
					logging.String("value", raw),
				)
				skipped++
				continue
			}
			v, err := parseScore(raw)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeDatasetInvalid, "non-numeric score").
					WithDetail("row " + strconv.Itoa(r+2) + " column " + strconv.Quote(c.header) + " value " + strconv.Quote(raw))
			}
			out = append(out, indicator.Observation{
				Region:    region,
				State:     state,
				Year:      c.year,
				Dimension: c.dimension,
				Value:     v,
			})
		}
	}
	log.Info("dataset melted",
		logging.Int("rows", len(rows)-1),
		logging.Int("value_columns", len(cols)),
		logging.Int("observations", len(out)),
		logging.Int("missing_cells", skipped),
	)
	return out, nil
}

// parseValueHeader splits "<Dimension> <Year>".  ok is false for headers
// that do not end in a four-digit year; err is set when they do but the
// dimension word is unknown.
func parseValueHeader(index int, header string) (valueColumn, bool, error) {
	h := strings.TrimSpace(header)
	if utf8.RuneCountInString(h) < 5 {
		return valueColumn{}, false, nil
	}
	year := h[len(h)-4:]
	for _, c := range year {
		if c < '0' || c > '9' {
			return valueColumn{}, false, nil
		}
	}
	word := strings.TrimSpace(h[:len(h)-4])
	if word == "" {
		return valueColumn{}, false, nil
	}
	dim, err := indicator.ParseDimension(word)
	if err != nil {
		return valueColumn{}, false, err
	}
	return valueColumn{index: index, header: h, dimension: dim, year: year}, true, nil
}

// parseScore accepts "4.5" and the comma-decimal "4,5".
func parseScore(s string) (float64, error) {
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

//Personal.AI order the ending
