package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
)

// optionsResult adapts dashboard.Options to PrintResult.
type optionsResult struct {
	opts *dashboard.Options
}

func (r optionsResult) String() string {
	return fmt.Sprintf("States:  %s\nYears:   %s\nDefault: %s",
		strings.Join(r.opts.States, ", "),
		strings.Join(r.opts.Years, ", "),
		r.opts.Default.String())
}

func (r optionsResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.opts)
}

func (r optionsResult) TableHeaders() []string {
	return []string{"STATE", "YEAR"}
}

// TableRows lists states and years side by side; the shorter column is
// left blank.
func (r optionsResult) TableRows() [][]string {
	n := len(r.opts.States)
	if len(r.opts.Years) > n {
		n = len(r.opts.Years)
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{"", ""}
		if i < len(r.opts.States) {
			rows[i][0] = r.opts.States[i]
		}
		if i < len(r.opts.Years) {
			rows[i][1] = r.opts.Years[i]
		}
	}
	return rows
}

// NewOptionsCmd lists the selectable states and years.
func NewOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the states and years present in the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.commandContext(cmd.Context())
			defer cancel()

			svc, err := cliCtx.Service(ctx)
			if err != nil {
				return err
			}
			opts, err := svc.Options(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, optionsResult{opts: opts})
		},
	}
}

//Personal.AI order the ending
