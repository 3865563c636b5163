package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Output formats accepted by --output.
const (
	outputText  = "text"
	outputJSON  = "json"
	outputTable = "table"
)

func parseOutputFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case outputText, outputJSON, outputTable:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeValidation, "unsupported output format").WithDetail(s)
	}
}

// tabular is implemented by results that have a table form.
type tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data in the --output format, or as JSON when the
// command carries no CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := outputJSON
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}
	w := cmd.OutOrStdout()

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case outputTable:
		if t, ok := data.(tabular); ok {
			_, err := io.WriteString(w, FormatTable(t.TableHeaders(), t.TableRows()))
			return err
		}
	}
	_, err := fmt.Fprintln(w, textOf(data))
	return err
}

func textOf(data interface{}) string {
	switch v := data.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%+v", v)
	}
}

func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
	}
}

func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable aligns rows under headers, two spaces between columns and a
// dashed rule below the header.  Widths are measured in terminal cells.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	measure := func(cells []string) {
		for i := range widths {
			if i < len(cells) {
				widths[i] = max(widths[i], lipgloss.Width(cells[i]))
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, w := range widths {
			if i > 0 {
				sb.WriteString("  ")
			}
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", w-lipgloss.Width(cell)))
		}
		sb.WriteByte('\n')
	}
	writeRow(headers)
	writeRow(rule)
	for _, r := range rows {
		writeRow(r)
	}
	return sb.String()
}

//Personal.AI order the ending
