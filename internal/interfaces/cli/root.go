// Package cli implements the trilemma command tree: the dashboard server and
// terminal commands that compute views locally or against a running server.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/config"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/client"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Set through -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions are the persistent flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
	ServerAddr   string
}

// CLIContext is built once per invocation and shared by every subcommand.
type CLIContext struct {
	Config *config.Config
	// ConfigFile is empty when no file was found and defaults were used.
	ConfigFile   string
	Logger       logging.Logger
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
	// Client is non-nil with --server; terminal commands then query that
	// dashboard instead of the local dataset.
	Client *client.Client
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trilemma",
		Short: "Energy trilemma 3D vector dashboard",
		Long: "trilemma serves an interactive 3D dashboard of the energy trilemma indicators\n" +
			"(equity, security, environmental) per state and year, and prints the same\n" +
			"vector angles in the terminal.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := opts.build()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./trilemma.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	pf.StringVarP(&opts.OutputFormat, "output", "o", outputText, "output format (text, json, table)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "timeout of one-shot commands")
	pf.StringVar(&opts.ServerAddr, "server", "", "query a running dashboard (e.g. http://localhost:8050) instead of the local dataset")

	cmd.AddCommand(
		NewServeCmd(),
		NewViewCmd(),
		NewOptionsCmd(),
		NewRenderCmd(),
		NewEventsCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// build validates the flags and wires config, logger and optional client.
func (o *RootOptions) build() (*CLIContext, error) {
	format, err := parseOutputFormat(o.OutputFormat)
	if err != nil {
		return nil, err
	}
	cfg, file, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := o.terminalLogger(cfg)
	if err != nil {
		return nil, err
	}
	c := &CLIContext{
		Config:       cfg,
		ConfigFile:   file,
		Logger:       logger,
		OutputFormat: format,
		NoColor:      o.NoColor,
		Timeout:      o.Timeout,
	}
	if o.ServerAddr != "" {
		c.Client, err = client.NewClient(o.ServerAddr,
			client.WithTimeout(o.Timeout),
			client.WithUserAgent("trilemma-cli/"+Version),
		)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func configSearchPath() []string {
	paths := []string{"./trilemma.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".trilemma", "config.yaml"))
	}
	return append(paths, "/etc/trilemma/config.yaml")
}

// loadConfig prefers --config, then the first existing file on the search
// path, then defaults plus TRILEMMA_* environment.
func (o *RootOptions) loadConfig() (*config.Config, string, error) {
	if o.ConfigPath != "" {
		cfg, err := config.Load(o.ConfigPath)
		return cfg, o.ConfigPath, err
	}
	for _, p := range configSearchPath() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}
	cfg, err := config.LoadOptional("")
	return cfg, "", err
}

// terminalLogger writes console-encoded entries to stderr so stdout stays
// machine-readable.
func (o *RootOptions) terminalLogger(cfg *config.Config) (logging.Logger, error) {
	name := cfg.Log.Level
	if o.LogLevel != "" {
		name = o.LogLevel
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid log level").WithDetail(name)
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext returns the context installed by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command has no context")
	}
	if c, ok := ctx.Value(cliContextKey{}).(*CLIContext); ok && c != nil {
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInternal, "command context carries no CLIContext")
}

// Service is the remote dashboard with --server and the local dataset
// otherwise.
func (c *CLIContext) Service(ctx context.Context) (dashboard.Service, error) {
	if c.Client != nil {
		return newRemoteService(c.Client), nil
	}
	store, err := openObjectStore(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()
	}
	table, err := loadTable(ctx, c.Config, store, c.Logger)
	if err != nil {
		return nil, err
	}
	return dashboard.NewService(table, nil, nil, c.Logger), nil
}

// commandContext bounds a one-shot command by --timeout.
func (c *CLIContext) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

// Execute runs the command tree and prints a failure to stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	PrintError(root, err)
	return err
}

//Personal.AI order the ending
