// Package dataset loads the energy-trilemma spreadsheet from a local file or
// object storage, melts its "<Dimension> <Year>" columns and builds the
// immutable indicator.Table.
package dataset

import (
	"context"
	"time"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Config selects and decodes the dataset.
type Config struct {
	// Location is a file path or minio://bucket/key.
	Location string `mapstructure:"location"`
	// Format overrides extension-based detection ("xlsx" or "csv").
	Format string `mapstructure:"format"`
	// Sheet is the worksheet of an xlsx workbook.
	Sheet                string `mapstructure:"sheet"`
	IgnoreUnknownColumns bool   `mapstructure:"ignore_unknown_columns"`
}

// Loader reads the dataset once.
type Loader struct {
	cfg    Config
	loc    Location
	format Format
	source Source
	logger logging.Logger
}

// NewLoader validates cfg.  repo serves minio:// locations and may be nil
// otherwise.
func NewLoader(cfg Config, repo ObjectDownloader, logger logging.Logger) (*Loader, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	loc, err := ParseLocation(cfg.Location)
	if err != nil {
		return nil, err
	}
	format, err := DetectFormat(loc, cfg.Format)
	if err != nil {
		return nil, err
	}
	if loc.Remote() && repo == nil {
		return nil, errors.New(errors.ErrCodeValidation, "dataset location needs object storage but minio is not configured").
			WithDetail(loc.Raw)
	}
	return &Loader{
		cfg:    cfg,
		loc:    loc,
		format: format,
		source: SourceFor(loc, repo),
		logger: logger.Named("dataset"),
	}, nil
}

// Location returns the parsed dataset location.
func (l *Loader) Location() Location { return l.loc }

// Load reads, decodes and indexes the dataset.
func (l *Loader) Load(ctx context.Context) (*indicator.Table, error) {
	start := time.Now()
	data, err := l.source.Read(ctx)
	if err != nil {
		return nil, err
	}
	table, err := Parse(data, l.format, l.cfg.Sheet, MeltOptions{
		IgnoreUnknownColumns: l.cfg.IgnoreUnknownColumns,
		Logger:               l.logger,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("dataset loaded",
		logging.String("location", l.loc.Raw),
		logging.String("format", string(l.format)),
		logging.Int("observations", table.Len()),
		logging.Int("states", len(table.States())),
		logging.Int("years", len(table.Years())),
		logging.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

// Parse decodes raw dataset bytes into a Table.
func Parse(data []byte, format Format, sheet string, opts MeltOptions) (*indicator.Table, error) {
	rows, err := ReadRows(data, format, sheet)
	if err != nil {
		return nil, err
	}
	obs, err := Melt(rows, opts)
	if err != nil {
		return nil, err
	}
	table, err := indicator.NewTable(obs)
	if err != nil {
		return nil, err
	}
	if _, ok := table.DefaultSelection(); !ok {
		return nil, errors.New(errors.ErrCodeDatasetInvalid, "dataset has no scored state")
	}
	return table, nil
}

//Personal.AI order the ending
