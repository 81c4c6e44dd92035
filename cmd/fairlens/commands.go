package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arkilian/fairlens/internal/config"
	"github.com/arkilian/fairlens/internal/dataio"
	"github.com/arkilian/fairlens/internal/discretization"
	"github.com/arkilian/fairlens/pkg/array"
)

type rootOptions struct {
	configFile  string
	envFile     string
	logLevel    string
	categorical []string
	header      bool
	structured  bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fairlens",
		Short:         "Inspect, discretize and score tabular datasets",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to an optional .env file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringSliceVar(&opts.categorical, "categorical", nil, "Categorical columns (positions, or field names with --structured)")
	flags.BoolVar(&opts.header, "header", true, "Treat the first CSV record as column names")
	flags.BoolVar(&opts.structured, "structured", false, "Load the CSV as a structured array with named fields")

	root.AddCommand(newInspectCmd(opts), newDiscretizeCmd(opts), newFidelityCmd(opts))
	return root
}

// init loads configuration from file, environment and flags, in that order.
// Fidelity settings are checked by the commands that score rows.
func (o *rootOptions) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if o.configFile != "" {
		loaded, err := config.LoadFromFile(o.configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if cmd.Flags().Changed("categorical") {
		cfg.Discretization.Categorical = o.categorical
	}
	if err := cfg.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *rootOptions) loadDiscretizer(path string) (*discretization.QuartileDiscretizer, *array.Array, error) {
	dataset, err := dataio.ReadFile(path, dataio.ReadOptions{Header: o.header, Structured: o.structured})
	if err != nil {
		return nil, nil, err
	}
	categorical, err := o.cfg.Discretization.CategoricalIndices(array.IsStructured(dataset))
	if err != nil {
		return nil, nil, err
	}
	d, err := discretization.NewQuartileDiscretizer(dataset, categorical, discretization.WithLogger(o.logger))
	if err != nil {
		return nil, nil, err
	}
	return d, dataset, nil
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <dataset.csv>",
		Short: "Show how each column of a dataset is classified",
		Example: `  # Classify the columns of a numeric dataset, forcing two categorical columns
  fairlens inspect --categorical 0,1 data.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, dataset, err := opts.loadDiscretizer(args[0])
			if err != nil {
				return err
			}
			return writeInspection(cmd.OutOrStdout(), d, dataset)
		},
	}
}

func writeInspection(out io.Writer, d *discretization.QuartileDiscretizer, dataset *array.Array) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COLUMN\tKIND\tROLE\tBINS")

	categorical := make(map[array.ColumnID]bool)
	for _, id := range d.CategoricalIndices() {
		categorical[id] = true
	}
	names := d.FeatureValueNames()

	for _, id := range dataset.Columns() {
		kind, _ := dataset.ColumnKind(id)
		role, bins := "numerical", strings.Join(names[id], " | ")
		if categorical[id] {
			role, bins = "categorical", "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, kind, role, bins)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, warning := range d.Warnings() {
		if _, err := fmt.Fprintf(out, "\nwarning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

func newDiscretizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discretize <dataset.csv>",
		Short: "Replace numerical features with their quartile bin index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, dataset, err := opts.loadDiscretizer(args[0])
			if err != nil {
				return err
			}
			out, err := d.Discretize(dataset)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), out)
		},
	}
}

func writeRows(out io.Writer, a *array.Array) error {
	cols := a.Columns()
	header := make([]string, len(cols))
	for i, id := range cols {
		header[i] = strings.Trim(id.String(), "'")
	}
	if _, err := fmt.Fprintln(out, strings.Join(header, ",")); err != nil {
		return err
	}
	for r := 0; r < a.Rows(); r++ {
		values := a.RowValues(r)
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintln(out, strings.Join(cells, ",")); err != nil {
			return err
		}
	}
	return nil
}
