package model

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"deskinsight/internal/dataset"
	"deskinsight/internal/domain"
	"deskinsight/internal/telemetry"
)

// Stage names the step a prediction run has reached.
type Stage string

const (
	StageLoaded    Stage = "loaded"
	StageSplit     Stage = "split"
	StageTrained   Stage = "trained"
	StagePredicted Stage = "predicted"
	StageExported  Stage = "exported"
)

// Exporter renders the explainability artifacts of a trained model and
// returns their file names in order.
type Exporter interface {
	ExportRegression(ctx context.Context, actual []int, predicted []float64, threshold float64) ([]string, error)
	ExportTree(ctx context.Context, tree *Tree) ([]string, error)
	ExportForest(ctx context.Context, forest *Forest) ([]string, error)
}

type Config struct {
	DatasetPath string
	SplitSeed   *uint64
	TreeSeed    *uint64
	ForestSeed  uint64
}

// Result is the outcome of one prediction run.
type Result struct {
	RunID     uuid.UUID `json:"run_id"`
	Kind      Kind      `json:"model"`
	Critical  bool      `json:"critical"`
	Label     string    `json:"label"`
	Score     *float64  `json:"score,omitempty"`
	Artifacts []string  `json:"artifacts"`
}

// Predictor retrains the requested model from the dataset on every call and
// keeps nothing between calls.
type Predictor struct {
	cfg      Config
	exporter Exporter
	splitter dataset.Splitter
	load     func(path string) ([]domain.TrainingExample, error)
	logger   *zap.Logger
}

type Option func(*Predictor)

// WithSplitter replaces the random 80/20 split, e.g. with a fixed partition.
func WithSplitter(s dataset.Splitter) Option {
	return func(p *Predictor) { p.splitter = s }
}

// WithLoader replaces dataset.Load.
func WithLoader(load func(path string) ([]domain.TrainingExample, error)) Option {
	return func(p *Predictor) { p.load = load }
}

// NewPredictor builds a predictor. A nil exporter skips artifact rendering.
func NewPredictor(cfg Config, exporter Exporter, logger *zap.Logger, opts ...Option) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Predictor{
		cfg:      cfg,
		exporter: exporter,
		splitter: dataset.RandomSplitter{TestRatio: dataset.DefaultTestRatio, Seed: cfg.SplitSeed},
		load:     dataset.Load,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PredictRaw parses kindName and values before calling Predict.
func (p *Predictor) PredictRaw(ctx context.Context, kindName string, values []any) (Result, error) {
	kind, err := ParseKind(kindName)
	if err != nil {
		return Result{}, err
	}
	fv, err := ParseFeatureVector(values)
	if err != nil {
		return Result{}, err
	}
	return p.Predict(ctx, kind, fv)
}

func (p *Predictor) Predict(ctx context.Context, kind Kind, fv domain.FeatureVector) (res Result, err error) {
	if !kind.Valid() {
		return Result{}, &domain.UnsupportedModelError{Kind: kind.String()}
	}
	row, err := FeatureRow(fv)
	if err != nil {
		return Result{}, err
	}

	runID := uuid.New()
	ctx, span := telemetry.StartSpan(ctx, "model.predict")
	span.SetAttributes(attribute.String("model", kind.String()), attribute.String("run_id", runID.String()))
	defer func() { telemetry.EndSpan(span, err) }()
	log := p.logger.With(zap.String("run_id", runID.String()), zap.Stringer("model", kind))

	start := time.Now()
	examples, err := p.load(p.cfg.DatasetPath)
	if err != nil {
		return Result{}, fmt.Errorf("load dataset: %w", err)
	}
	log.Debug("prediction stage", zap.String("stage", string(StageLoaded)), zap.Int("examples", len(examples)))
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	part, err := p.splitter.Split(examples)
	if err != nil {
		return Result{}, err
	}
	if len(part.Train) == 0 {
		return Result{}, &domain.InsufficientDataError{Total: len(examples), Train: 0}
	}
	log.Debug("prediction stage", zap.String("stage", string(StageSplit)),
		zap.Int("train", len(part.Train)), zap.Int("test", len(part.Test)), zap.Uint64("split_seed", part.Seed))

	m, err := p.train(kind, part)
	if err != nil {
		return Result{}, fmt.Errorf("train %s: %w", kind, err)
	}
	telemetry.TrainingDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	log.Debug("prediction stage", zap.String("stage", string(StageTrained)), zap.Duration("elapsed", time.Since(start)))

	critical, score := m.predict(row)
	res = Result{RunID: runID, Kind: kind, Critical: critical, Label: label(critical), Score: score, Artifacts: []string{}}
	telemetry.PredictionsTotal.WithLabelValues(kind.String(), res.Label).Inc()
	log.Debug("prediction stage", zap.String("stage", string(StagePredicted)), zap.String("label", res.Label))

	if p.exporter != nil {
		artifacts, err := m.export(ctx, p.exporter, part)
		if err != nil {
			return Result{}, fmt.Errorf("export %s artifacts: %w", kind, err)
		}
		res.Artifacts = artifacts
		telemetry.ArtifactsWrittenTotal.WithLabelValues(kind.String()).Add(float64(len(artifacts)))
		log.Debug("prediction stage", zap.String("stage", string(StageExported)), zap.Strings("artifacts", artifacts))
	}

	log.Info("prediction complete", zap.Bool("critical", res.Critical), zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// trained is the per-family handler of a fitted model.
type trained interface {
	predict(row []float64) (critical bool, score *float64)
	export(ctx context.Context, e Exporter, part dataset.Partition) ([]string, error)
}

func (p *Predictor) train(kind Kind, part dataset.Partition) (trained, error) {
	x, y := part.TrainX(), part.TrainY()
	switch kind {
	case KindRegression:
		yf := make([]float64, len(y))
		for i, v := range y {
			yf[i] = float64(v)
		}
		l, err := FitLinear(x, yf)
		if err != nil {
			return nil, err
		}
		return regressionModel{l}, nil
	case KindTree:
		t, err := FitTree(x, y, nil, TreeParams{MinSamplesSplit: 2}, seededRand(p.cfg.TreeSeed))
		if err != nil {
			return nil, err
		}
		return treeModel{t}, nil
	case KindForest:
		f, err := FitForest(x, y, p.cfg.ForestSeed)
		if err != nil {
			return nil, err
		}
		return forestModel{f}, nil
	}
	return nil, &domain.UnsupportedModelError{Kind: kind.String()}
}

func seededRand(seed *uint64) *rand.Rand {
	s := rand.Uint64()
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewPCG(s, s))
}

func label(critical bool) string {
	if critical {
		return domain.ClassNames[1]
	}
	return domain.ClassNames[0]
}

type regressionModel struct{ l *Linear }

func (m regressionModel) predict(row []float64) (bool, *float64) {
	score := m.l.Score(row)
	return Critical(score), &score
}

func (m regressionModel) export(ctx context.Context, e Exporter, part dataset.Partition) ([]string, error) {
	testX := part.TestX()
	predicted := make([]float64, len(testX))
	for i, row := range testX {
		predicted[i] = m.l.Score(row)
	}
	return e.ExportRegression(ctx, part.TestY(), predicted, RegressionThreshold)
}

type treeModel struct{ t *Tree }

func (m treeModel) predict(row []float64) (bool, *float64) {
	return m.t.Predict(row) == 1, nil
}

func (m treeModel) export(ctx context.Context, e Exporter, _ dataset.Partition) ([]string, error) {
	return e.ExportTree(ctx, m.t)
}

type forestModel struct{ f *Forest }

func (m forestModel) predict(row []float64) (bool, *float64) {
	return m.f.Predict(row) == 1, nil
}

func (m forestModel) export(ctx context.Context, e Exporter, _ dataset.Partition) ([]string, error) {
	return e.ExportForest(ctx, m.f)
}
