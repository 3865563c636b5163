package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
)

// viewResult adapts a ViewModel to PrintResult.
type viewResult struct {
	vm      *dashboard.ViewModel
	noColor bool
}

func (r viewResult) String() string {
	return renderView(r.vm, newViewStyles(r.noColor))
}

func (r viewResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.vm)
}

func (r viewResult) TableHeaders() []string {
	return []string{"KEY", "ANGLE", "VALUE"}
}

func (r viewResult) TableRows() [][]string {
	var rows [][]string
	for _, g := range r.vm.Groups {
		for _, ro := range g.Readouts {
			rows = append(rows, []string{ro.Key, ro.Label, ro.Value})
		}
	}
	return rows
}

// NewViewCmd prints the vector angles of one selection.
func NewViewCmd() *cobra.Command {
	var state, year string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the vector angles of a state and year",
		Long: "Compute the generic and ideal trilemma vectors of a selection and print the ten\n" +
			"angle readouts. Without --state/--year the first state and year are used.",
		Example: "  trilemma view --state SP --year 2019\n  trilemma view -o json --server http://localhost:8050 --state BA --year 2018",
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
			sel, err := resolveSelection(ctx, svc, state, year)
			if err != nil {
				return err
			}
			vm, err := svc.ComputeView(ctx, sel)
			if err != nil {
				return err
			}
			cliCtx.Logger.Debug("view computed",
				logging.String(logging.FieldState, sel.State),
				logging.String(logging.FieldYear, sel.Year),
				logging.Int("undefined", len(vm.UndefinedKeys())))
			return PrintResult(cmd, viewResult{vm: vm, noColor: cliCtx.NoColor})
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "state code, e.g. SP")
	cmd.Flags().StringVar(&year, "year", "", "four-digit year")
	return cmd
}

// resolveSelection fills missing flags from the dataset's first state and
// year.
func resolveSelection(ctx context.Context, svc dashboard.Service, state, year string) (indicator.Selection, error) {
	sel := indicator.Selection{State: state, Year: year}
	if sel.State != "" && sel.Year != "" {
		return sel, nil
	}
	opts, err := svc.Options(ctx)
	if err != nil {
		return sel, err
	}
	if sel.State == "" {
		sel.State = opts.Default.State
	}
	if sel.Year == "" {
		sel.Year = opts.Default.Year
	}
	return sel, nil
}

//Personal.AI order the ending
