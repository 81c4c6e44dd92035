package transparency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arkilian/fairlens/internal/augmentation"
	"github.com/arkilian/fairlens/internal/config"
	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/internal/models"
	"github.com/arkilian/fairlens/internal/observability"
	"github.com/arkilian/fairlens/pkg/array"
)

// Report describes one scored data row.
type Report struct {
	ID          uuid.UUID
	Row         int
	GlobalClass int
	Score       float64
	Degenerate  bool
	RFid        float64
	Samples     int
	Duration    time.Duration
}

// Scorer computes local fidelity scores with configured parameters and
// records them in a FidelityStats tracker. A Scorer holds no per-call state
// and is safe for concurrent use.
type Scorer struct {
	cfg         config.FidelityConfig
	categorical []array.ColumnID
	stats       *observability.FidelityStats
	logger      *zap.Logger
}

// NewScorer creates a scorer. A nil stats tracker disables recording.
func NewScorer(cfg config.FidelityConfig, categorical []array.ColumnID, stats *observability.FidelityStats, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Scorer{
		cfg:         cfg,
		categorical: categorical,
		stats:       stats,
		logger:      logger,
	}
}

// Score computes the local fidelity of a single data row.
func (s *Scorer) Score(dataset, dataRow *array.Array, local, global models.Predictor, globalClass int) (*Report, error) {
	return s.score(dataset, dataRow, -1, local, global, globalClass)
}

// ScoreRows scores every row of a 2-dimensional batch concurrently, at most
// Concurrency rows at a time. Reports are returned in row order. The first
// failure cancels the remaining rows.
func (s *Scorer) ScoreRows(ctx context.Context, dataset, rows *array.Array, local, global models.Predictor, globalClass int) ([]*Report, error) {
	if !array.Is2D(rows) {
		return nil, fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, "rows to score must be a 2-dimensional array.")
	}

	reports := make([]*Report, rows.Rows())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i := range reports {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.score(dataset, rows.Row(i), i, local, global, globalClass)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Scorer) score(dataset, dataRow *array.Array, row int, local, global models.Predictor, globalClass int) (*Report, error) {
	start := time.Now()

	opts := []Option{
		WithRFid(s.cfg.RFid),
		WithSamplesNumber(s.cfg.SamplesNumber),
		WithCategoricalIndices(s.categorical),
		WithLogger(s.logger),
	}
	if s.cfg.Seed != 0 && dataRow != nil {
		opts = append(opts, WithSeed(augmentation.RowSeed(s.cfg.Seed, dataRow)))
	}

	res, err := Compute(dataset, dataRow, local, global, globalClass, opts...)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:          uuid.New(),
		Row:         row,
		GlobalClass: globalClass,
		Score:       res.Score,
		Degenerate:  res.Degenerate,
		RFid:        s.cfg.RFid,
		Samples:     s.cfg.SamplesNumber,
		Duration:    time.Since(start),
	}
	if s.stats != nil {
		s.stats.Record(globalClass, res.Score, res.Degenerate)
	}

	s.logger.Info("scored data row",
		zap.String("report_id", report.ID.String()),
		zap.Int("row", row),
		zap.Int("global_class", globalClass),
		zap.Float64("score", report.Score),
		zap.Bool("degenerate", report.Degenerate),
		zap.Duration("duration", report.Duration))

	return report, nil
}
