// Package pipeline は学習・評価・保存・比較の各処理をつなぎます。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/your-org/wwtp-flow-predictor/internal/config"
	"github.com/your-org/wwtp-flow-predictor/internal/dataset"
	"github.com/your-org/wwtp-flow-predictor/internal/evaluation"
	"github.com/your-org/wwtp-flow-predictor/internal/modelpkg"
	"github.com/your-org/wwtp-flow-predictor/internal/plot"
	"github.com/your-org/wwtp-flow-predictor/internal/regression"
	"github.com/your-org/wwtp-flow-predictor/internal/report"
	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
	"github.com/your-org/wwtp-flow-predictor/internal/split"
)

var (
	// ErrNoModels は比較モードで1つもモデルを訓練できなかったことを示します。
	ErrNoModels = errors.New("no models were successfully trained")
	// ErrEmptyTestSet はテスト用の行が0件で評価できないことを示します。
	ErrEmptyTestSet = errors.New("test subset is empty")
)

// Pipeline は設定と周辺コンポーネントを保持します。
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
	store  runstore.Repository
	out    io.Writer
}

// Option は Pipeline の任意設定です。
type Option func(*Pipeline)

// WithRunStore は学習結果を記録するリポジトリを設定します。
func WithRunStore(store runstore.Repository) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithOutput はコンソール要約の出力先を設定します。
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// NewPipeline は新しいPipelineを生成します。
func NewPipeline(cfg *config.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, logger: logger, out: io.Discard}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TrainResult は1回の学習の成果物です。
type TrainResult struct {
	Package     *modelpkg.Package
	Evaluation  evaluation.Result
	TrainSize   int
	TestSize    int
	Predictions []float64
}

// Train は設定されたターゲットと特徴量でモデルを訓練し、評価して保存します。
// 特徴量が空の場合は日付と除外列を除くすべての数値列を使います。
func (p *Pipeline) Train(ctx context.Context, table *dataset.Table) (*TrainResult, error) {
	pc := p.cfg.Pipeline
	family, err := regression.ParseFamily(pc.Family)
	if err != nil {
		return nil, err
	}

	var frame *dataset.Frame
	if len(pc.Features) > 0 {
		frame, err = dataset.Select(table, pc.Target, pc.Features...)
	} else {
		frame, err = dataset.SelectAllExcept(table, pc.Target, p.excluded()...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select columns: %w", err)
	}
	p.logger.Info("Training data selected",
		zap.String("target", frame.Target),
		zap.Strings("features", frame.Features),
		zap.Int("rows", frame.Len()),
		zap.Int("dropped", table.Len()-frame.Len()))

	res, err := p.fitAndEvaluate(ctx, family, frame)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, err := modelpkg.New(res.model, frame.Features, frame.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to package model: %w", err)
	}
	if err := modelpkg.Save(pc.OutputPath, pkg); err != nil {
		return nil, err
	}
	p.logger.Info("Model saved", zap.String("path", pc.OutputPath), zap.String("version", pkg.Version))

	result := &TrainResult{
		Package:     pkg,
		Evaluation:  res.eval,
		TrainSize:   res.trainSize,
		TestSize:    res.test.Len(),
		Predictions: res.predictions,
	}

	report.PrintModel(p.out, frame.Target, result.Evaluation)
	report.PrintMetrics(p.out, result.Evaluation.Metrics)

	if p.cfg.Plots.Save.Bool() {
		p.writePlots(frame, res)
	}
	if p.store != nil {
		p.recordTraining(ctx, result)
	}
	return result, nil
}

// Compare は候補の特徴量ごとに単回帰モデルを訓練し、R²の降順でレポートに書き出します。
// 列の欠落やデータ不足の候補は警告を出して飛ばします。
func (p *Pipeline) Compare(ctx context.Context, table *dataset.Table) ([]evaluation.Result, error) {
	pc := p.cfg.Pipeline
	var results []evaluation.Result

	for _, feature := range p.cfg.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.logger.Info("Evaluating candidate", zap.String("feature", feature))

		frame, err := dataset.Select(table, pc.Target, feature)
		if err != nil {
			var missing *dataset.MissingColumnError
			if errors.As(err, &missing) {
				p.logger.Warn("Skipping candidate: column not found", zap.String("feature", feature), zap.String("column", missing.Column))
				continue
			}
			return nil, err
		}
		if err := frame.RequireRows(dataset.MinUsableRows); err != nil {
			p.logger.Warn("Skipping candidate: not enough usable rows",
				zap.String("feature", feature), zap.Int("rows", frame.Len()), zap.Int("required", dataset.MinUsableRows))
			continue
		}

		res, err := p.fitAndEvaluate(ctx, regression.Linear, frame)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			p.logger.Warn("Skipping candidate: training failed", zap.String("feature", feature), zap.Error(err))
			continue
		}
		report.PrintResult(p.out, res.eval)
		results = append(results, res.eval)
	}

	if len(results) == 0 {
		return nil, ErrNoModels
	}
	report.SortByR2(results)
	if err := report.WriteComparison(pc.ReportPath, results, p.logger); err != nil {
		return nil, fmt.Errorf("failed to write comparison report: %w", err)
	}
	p.logger.Info("Comparison report written", zap.String("path", pc.ReportPath), zap.Int("models", len(results)))
	report.PrintTop(p.out, results, 10)
	return results, nil
}

type fitted struct {
	model       regression.Model
	eval        evaluation.Result
	test        *dataset.Frame
	trainSize   int
	predictions []float64
}

// fitAndEvaluate は分割、訓練、テストセットでの評価を行います。
func (p *Pipeline) fitAndEvaluate(ctx context.Context, family regression.Family, frame *dataset.Frame) (*fitted, error) {
	pc := p.cfg.Pipeline
	part, err := split.Split(frame.Len(), pc.TestSize, pc.Seed)
	if err != nil {
		return nil, err
	}
	train, test := frame.Subset(part.Train), frame.Subset(part.Test)

	model, err := regression.Fit(ctx, family, train.X, train.Y, p.regressionOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s model: %w", family, err)
	}
	if test.Len() == 0 {
		return nil, ErrEmptyTestSet
	}
	m, pred, err := evaluation.Evaluate(model, test.X, test.Y)
	if err != nil {
		return nil, err
	}
	return &fitted{
		model:       model,
		eval:        evaluation.NewResult(model, frame.Features, frame.Len(), m),
		test:        test,
		trainSize:   train.Len(),
		predictions: pred,
	}, nil
}

func (p *Pipeline) regressionOptions() regression.Options {
	opts := regression.DefaultOptions()
	opts.Seed = p.cfg.Pipeline.Seed
	if f := p.cfg.Forest; f.Trees > 0 {
		opts.Trees = f.Trees
	}
	opts.MaxDepth = p.cfg.Forest.MaxDepth
	if f := p.cfg.Forest; f.MinSamplesSplit > 0 {
		opts.MinSamplesSplit = f.MinSamplesSplit
	}
	return opts
}

func (p *Pipeline) excluded() []string {
	pc := p.cfg.Pipeline
	out := append([]string(nil), pc.ExcludeColumns...)
	if pc.DateColumn != "" {
		out = append(out, pc.DateColumn)
	}
	return out
}

// writePlots は診断用グラフを出力します。失敗しても学習結果は有効なので警告のみです。
func (p *Pipeline) writePlots(frame *dataset.Frame, res *fitted) {
	feature := frame.Features[0]
	all, _ := frame.Column(feature)
	testFeature, _ := res.test.Column(feature)
	d := plot.Diagnostics{
		FeatureName: feature,
		TargetName:  frame.Target,
		FeatureAll:  all,
		TargetAll:   frame.Y,
		Feature:     testFeature,
		Truth:       res.test.Y,
		Predicted:   res.predictions,
	}
	if _, err := plot.Write(p.cfg.Plots.Dir, d, p.logger); err != nil {
		p.logger.Warn("Failed to write plots", zap.Error(err))
	}
}

func (p *Pipeline) recordTraining(ctx context.Context, r *TrainResult) {
	run := runstore.TrainingRun{
		ModelVersion: r.Package.Version,
		Family:       string(r.Package.Family()),
		Target:       r.Package.Target,
		Features:     r.Package.Features,
		ArtifactPath: p.cfg.Pipeline.OutputPath,
		TrainSize:    r.TrainSize,
		TestSize:     r.TestSize,
		Metrics:      r.Evaluation.Metrics,
		CreatedAt:    r.Package.TrainedAt,
	}
	id, err := p.store.RecordTraining(ctx, run)
	if err != nil {
		p.logger.Warn("Failed to record training run", zap.Error(err))
		return
	}
	p.logger.Info("Training run recorded", zap.Int64("id", id))
}
