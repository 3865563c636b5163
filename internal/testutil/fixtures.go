package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
)

// SampleObservations is a small dataset shared by package tests.
//
//	SP 2019: (6, 8, 2)   regular selection
//	SP 2018: (5, 5, 5)
//	BA 2018: (0, 4, 4)   zero equity, ratio angles over equity undefined
//	RJ 2020: (0, 0, 0)   zero vector, every generic angle undefined
func SampleObservations() []indicator.Observation {
	row := func(region, state, year string, eq, sec, env float64) []indicator.Observation {
		return []indicator.Observation{
			{Region: region, State: state, Year: year, Dimension: indicator.DimensionEquity, Value: eq},
			{Region: region, State: state, Year: year, Dimension: indicator.DimensionSecurity, Value: sec},
			{Region: region, State: state, Year: year, Dimension: indicator.DimensionEnvironmental, Value: env},
		}
	}
	var out []indicator.Observation
	out = append(out, row("Sudeste", "SP", "2019", 6, 8, 2)...)
	out = append(out, row("Sudeste", "SP", "2018", 5, 5, 5)...)
	out = append(out, row("Nordeste", "BA", "2018", 0, 4, 4)...)
	out = append(out, row("Sudeste", "RJ", "2020", 0, 0, 0)...)
	return out
}

// SampleTable builds an indicator.Table from SampleObservations.
func SampleTable(t testing.TB) *indicator.Table {
	t.Helper()
	table, err := indicator.NewTable(SampleObservations())
	require.NoError(t, err)
	return table
}

// SampleCSV is SampleObservations in the wide spreadsheet layout.
const SampleCSV = "Region,State,Equity 2018,Equity 2019,Equity 2020,Security 2018,Security 2019,Security 2020,Environmental 2018,Environmental 2019,Environmental 2020\n" +
	"Sudeste,SP,5,6,,5,8,,5,2,\n" +
	"Nordeste,BA,0,,,4,,,4,,\n" +
	"Sudeste,RJ,,,0,,,0,,,0\n"

// WriteSampleCSV writes SampleCSV to a temporary file and returns its path.
func WriteSampleCSV(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trilemma.csv")
	require.NoError(t, os.WriteFile(path, []byte(SampleCSV), 0o644))
	return path
}

//Personal.AI order the ending
