package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkilian/fairlens/internal/dataio"
	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/internal/models"
	"github.com/arkilian/fairlens/internal/observability"
	"github.com/arkilian/fairlens/internal/transparency"
	"github.com/arkilian/fairlens/pkg/array"
)

type fidelityOptions struct {
	target  string
	class   int
	globalK int
	localK  int
}

func newFidelityCmd(opts *rootOptions) *cobra.Command {
	fo := &fidelityOptions{}

	cmd := &cobra.Command{
		Use:   "fidelity <dataset.csv>",
		Short: "Score how well a local surrogate agrees with a global model around each row",
		Long: `Trains a k-nearest neighbours classifier on every column but the target
and scores, for each row, how often a smoother k-nearest neighbours surrogate
agrees with it on samples drawn around that row.`,
		Example: `  # Score every row of a dataset labelled by its "income_band" column
  fairlens fidelity --target income_band --class 1 data.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Fidelity.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return opts.runFidelity(cmd, args[0], fo)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fo.target, "target", "", "Column holding the ground truth labels")
	flags.IntVar(&fo.class, "class", 1, "Class explained by the local surrogate")
	flags.IntVar(&fo.globalK, "global-k", 1, "Neighbours consulted by the global model")
	flags.IntVar(&fo.localK, "local-k", 5, "Neighbours consulted by the local surrogate")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func (o *rootOptions) runFidelity(cmd *cobra.Command, path string, fo *fidelityOptions) error {
	dataset, err := dataio.ReadFile(path, dataio.ReadOptions{Header: o.header, Structured: true})
	if err != nil {
		return err
	}
	features, labels, err := splitTarget(dataset, fo.target)
	if err != nil {
		return err
	}
	categorical, err := o.cfg.Discretization.CategoricalIndices(true)
	if err != nil {
		return err
	}

	global, err := models.NewKNN(fo.globalK, features, labels)
	if err != nil {
		return err
	}
	surrogate, err := models.NewKNN(fo.localK, features, labels)
	if err != nil {
		return err
	}

	stats := observability.NewFidelityStats(time.Hour)
	scorer := transparency.NewScorer(o.cfg.Fidelity, categorical, stats, o.logger)
	reports, err := scorer.ScoreRows(cmd.Context(), features, features,
		surrogate.Probability(float64(fo.class)), global, fo.class)
	if err != nil {
		return err
	}
	return writeFidelity(cmd.OutOrStdout(), reports, stats)
}

// splitTarget separates the target column of a structured dataset from its
// features. Target values must be numerical.
func splitTarget(dataset *array.Array, target string) (*array.Array, []float64, error) {
	column, ok := dataset.Column(array.Name(target))
	if !ok {
		return nil, nil, fairerrors.NewIndexError(fmt.Sprintf("target column %q is not in the dataset", target))
	}
	labels := make([]float64, len(column))
	for i, v := range column {
		f, ok := array.ToFloat(v)
		if !ok {
			return nil, nil, fairerrors.NewValueError(fmt.Sprintf("target column %q holds a non-numerical label %v at row %d", target, v, i))
		}
		labels[i] = f
	}

	var names []string
	for _, f := range dataset.Fields() {
		if f.Name != target {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return nil, nil, fairerrors.NewValueError("the dataset has no feature columns besides the target")
	}
	features, err := dataset.SelectFields(names...)
	if err != nil {
		return nil, nil, fairerrors.NewInternalError("failed to select feature columns", err)
	}
	return features, labels, nil
}

func writeFidelity(out io.Writer, reports []*transparency.Report, stats *observability.FidelityStats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROW\tSCORE\tDEGENERATE")
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%d\t%.3f\t%t\n", r.Row, r.Score, r.Degenerate)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "CLASS\tROWS\tMEAN\tMIN\tMAX\tDEGENERATE")
	for _, s := range stats.Snapshot() {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%.3f\t%.3f\t%.3f\t%d\n", s.Class, s.Count, s.Mean(), s.Min, s.Max, s.Degenerate)
	}
	return w.Flush()
}
