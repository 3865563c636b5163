package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// DefaultSheet is the sheet name of the published trilemma workbook.
const DefaultSheet = "Trilema energético"

// ReadRows decodes data into rows of cell strings.  For workbooks, sheet
// selects the worksheet; when empty DefaultSheet is used if present, else the
// first sheet.
func ReadRows(data []byte, format Format, sheet string) ([][]string, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(data, sheet)
	case FormatCSV:
		return readCSV(data)
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unsupported dataset format %q", format)
	}
}

func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetInvalid, "failed to open workbook")
	}
	defer f.Close()

	name, err := pickSheet(f.GetSheetList(), sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetInvalid, "failed to read worksheet").WithDetail(name)
	}
	return rows, nil
}

func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New(errors.ErrCodeDatasetInvalid, "workbook has no worksheet")
	}
	if want != "" {
		for _, s := range sheets {
			if s == want {
				return s, nil
			}
		}
		return "", errors.New(errors.ErrCodeDatasetInvalid, "worksheet not found").
			WithDetail(want + " (have " + strings.Join(sheets, ", ") + ")")
	}
	for _, s := range sheets {
		if s == DefaultSheet {
			return s, nil
		}
	}
	return sheets[0], nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(data)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetInvalid, "malformed csv")
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter chooses ';' when the header line has more semicolons than
// commas, the usual export of spreadsheets in comma-decimal locales.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

//Personal.AI order the ending
