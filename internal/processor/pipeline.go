package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"imagesplit/internal/config"
	"imagesplit/internal/dataset"
	"imagesplit/internal/label"
	"imagesplit/internal/layout"
	"imagesplit/internal/logger"
	"imagesplit/internal/split"
)

// 実験記録の状態
const (
	RunStatusFinished = "FINISHED"
	RunStatusFailed   = "FAILED"
)

// RunTracker は実行を記録する
type RunTracker interface {
	StartRun(ctx context.Context, experiment string, params map[string]string) (string, error)
	FinishRun(ctx context.Context, runID, status string, metrics map[string]float64) error
}

// RunResult は1回の実行結果
type RunResult struct {
	Images      int
	Train       int
	Val         int
	Test        int
	Report      *Report
	ArchivePath string
	RunID       string
	Elapsed     time.Duration
}

// Pipeline は検出・分割・出力を順に行う
type Pipeline struct {
	Config  *config.Config
	Fs      afero.Fs
	Logger  *zap.Logger
	Tracker RunTracker // nil なら記録しない
}

// NewPipeline は OS のファイルシステムを使う Pipeline を返す
func NewPipeline(cfg *config.Config, log *zap.Logger) *Pipeline {
	return &Pipeline{Config: cfg, Fs: afero.NewOsFs(), Logger: log}
}

// Run はデータセット分割を実行する
// 設定エラーとディレクトリ作成失敗は即座に返す。画像が0件なら dataset.ErrNoImages を返す
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	log := logger.Or(p.Logger)
	cfg := p.Config
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p.logSettings(log)

	l := layout.FromConfig(cfg)
	if err := l.Ensure(p.Fs); err != nil {
		log.Error("出力ディレクトリの作成に失敗", zap.Error(err))
		return nil, err
	}

	images, err := dataset.Discover(p.Fs, cfg.RawRoot, cfg.Extensions, log)
	if err != nil {
		return nil, err
	}

	resolver := label.New(cfg)
	if dr, ok := resolver.(*label.DirectoryResolver); ok {
		for _, key := range dr.UnmappedKeys(images) {
			log.Warn("対応表にないクラスフォルダ", zap.String("key", key))
		}
	}

	result := &RunResult{Images: len(images)}
	if p.Tracker != nil {
		runID, err := p.Tracker.StartRun(ctx, cfg.Tracking.Experiment, p.runParams())
		if err != nil {
			log.Warn("実験記録の開始に失敗", zap.Error(err))
		} else {
			result.RunID = runID
		}
	}

	assignment := split.Partition(images, cfg.Ratios(), cfg.Seed)
	result.Train, result.Val, result.Test = len(assignment.Train), len(assignment.Val), len(assignment.Test)
	log.Info("分割サイズ",
		zap.Int("train", result.Train),
		zap.Int("val", result.Val),
		zap.Int("test", result.Test))

	m := &Materializer{
		Fs:       p.Fs,
		Layout:   l,
		Resolver: resolver,
		Workers:  cfg.CopyWorkers,
		Progress: cfg.Progress,
		Logger:   log,
	}
	report, err := m.Materialize(ctx, assignment)
	result.Report = report
	if err != nil {
		p.finishRun(ctx, log, result, RunStatusFailed)
		return result, err
	}

	if cfg.Archive != "" {
		if err := p.archive(log, result); err != nil {
			p.finishRun(ctx, log, result, RunStatusFailed)
			return result, err
		}
	}

	result.Elapsed = time.Since(start)
	p.finishRun(ctx, log, result, RunStatusFinished)

	log.Info("データセット分割が完了しました",
		zap.String("summary", report.Summary()),
		zap.Duration("elapsed", result.Elapsed))
	for _, e := range report.Errors {
		log.Warn("コピー失敗", zap.String("path", e.Path), zap.String("reason", e.Reason()))
	}
	return result, nil
}

func (p *Pipeline) logSettings(log *zap.Logger) {
	cfg := p.Config
	log.Info("データセット分割を開始します",
		zap.String("source", cfg.RawRoot),
		zap.String("destination", cfg.OutputRoot),
		zap.String("mode", string(cfg.Mode)),
		zap.Int64("seed", cfg.Seed))
	log.Info("分割比率",
		zap.Float64("train", cfg.TrainRatio),
		zap.Float64("val", cfg.ValRatio),
		zap.Float64("test", cfg.TestRatio))
	for _, task := range cfg.EffectiveTasks() {
		name := task.Name
		if name == "" {
			name = "(single)"
		}
		log.Info("タスクとクラス",
			zap.String("task", strings.ToUpper(name)),
			zap.String("classes", strings.Join(task.Classes, ", ")))
	}
}

func (p *Pipeline) archive(log *zap.Logger, result *RunResult) error {
	if _, ok := p.Fs.(*afero.OsFs); !ok {
		log.Warn("OS 以外のファイルシステムではアーカイブを作成できません")
		return nil
	}
	format := ArchiveFormat(p.Config.Archive)
	dest := ArchivePath(p.Config.OutputRoot, format)
	log.Info("アーカイブの作成を開始します", zap.String("path", dest))
	if err := CreateArchive(p.Config.OutputRoot, dest, format); err != nil {
		return err
	}
	result.ArchivePath = dest
	log.Info("アーカイブが作成されました", zap.String("path", dest))
	return nil
}

func (p *Pipeline) runParams() map[string]string {
	cfg := p.Config
	return map[string]string{
		"raw_root":    cfg.RawRoot,
		"output_root": cfg.OutputRoot,
		"mode":        string(cfg.Mode),
		"seed":        fmt.Sprint(cfg.Seed),
		"train_ratio": fmt.Sprint(cfg.TrainRatio),
		"val_ratio":   fmt.Sprint(cfg.ValRatio),
		"test_ratio":  fmt.Sprint(cfg.TestRatio),
	}
}

func (p *Pipeline) finishRun(ctx context.Context, log *zap.Logger, result *RunResult, status string) {
	if p.Tracker == nil || result.RunID == "" {
		return
	}
	metrics := map[string]float64{
		"images": float64(result.Images),
		"train":  float64(result.Train),
		"val":    float64(result.Val),
		"test":   float64(result.Test),
	}
	if r := result.Report; r != nil {
		metrics["copied"] = float64(r.Copied)
		metrics["skipped"] = float64(r.Skipped)
		metrics["errors"] = float64(len(r.Errors))
		metrics["bytes"] = float64(r.Bytes)
	}
	// 中断後も記録できるようにキャンセルされていない context を使う
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := p.Tracker.FinishRun(ctx, result.RunID, status, metrics); err != nil {
		log.Warn("実験記録の終了に失敗", zap.Error(errors.Wrap(err, result.RunID)))
	}
}
