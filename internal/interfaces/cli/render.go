package cli

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/dataset"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	objstore "github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/chart"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// exportToBucket selects the configured export bucket as the destination.
const exportToBucket = "minio"

// NewRenderCmd writes the standalone 3D chart page of one selection to a
// file or to object storage.
func NewRenderCmd() *cobra.Command {
	var state, year, out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the 3D vector chart of a state and year as HTML",
		Long: "Render the interactive 3D chart as a standalone HTML page.\n\n" +
			"--out accepts a file path, minio://bucket/key, or \"minio\" for\n" +
			"<export_bucket>/charts/<state>-<year>.html.",
		Example: "  trilemma render --state SP --year 2019 --out sp-2019.html\n  trilemma render --state SP --year 2019 --out minio",
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
			page, err := chart.RenderBytes(vm, cliCtx.Config.Chart)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("trilemma-%s.html", artifactName(sel.State, sel.Year))
			}
			if out != exportToBucket && !strings.HasPrefix(out, dataset.SchemeMinIO+"://") {
				if err := os.WriteFile(out, page, 0o644); err != nil {
					return errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to write chart").WithDetail(out)
				}
				cliCtx.Logger.Debug("chart written", logging.String("path", out), logging.Int("bytes", len(page)))
				PrintSuccess(cmd, "chart written to "+out)
				return nil
			}

			store, err := openObjectStore(cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New(errors.ErrCodeValidation, "minio is not enabled").WithDetail(out)
			}
			defer store.Close()

			bucket, key := store.exportBucket, fmt.Sprintf("charts/%s.html", artifactName(sel.State, sel.Year))
			if out != exportToBucket {
				loc, err := dataset.ParseLocation(out)
				if err != nil {
					return err
				}
				bucket, key = loc.Bucket, loc.Key
			}
			res, err := store.repo.Upload(ctx, &objstore.UploadRequest{
				Bucket:      bucket,
				ObjectKey:   key,
				Data:        page,
				ContentType: "text/html; charset=utf-8",
				Metadata:    map[string]string{"state": sel.State, "year": sel.Year},
			})
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("chart uploaded to %s://%s/%s (%d bytes)", dataset.SchemeMinIO, res.Bucket, res.ObjectKey, res.Size))
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "state code, e.g. SP")
	cmd.Flags().StringVar(&year, "year", "", "four-digit year")
	cmd.Flags().StringVar(&out, "out", "", "destination: file path, minio://bucket/key or \"minio\"")
	return cmd
}

// artifactName builds "<state>-<year>" for default file names and object
// keys.  Selection values come from the dataset, so anything other than
// letters, digits, '-' and '_' becomes '_' and the result never holds a
// path separator or a dot segment.
func artifactName(state, year string) string {
	slug := func(s string) string {
		s = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
				return r
			}
			return '_'
		}, strings.TrimSpace(s))
		if s == "" {
			return "_"
		}
		return s
	}
	return slug(state) + "-" + slug(year)
}

//Personal.AI order the ending
