package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"imagesplit/internal/config"
	"imagesplit/internal/processor"
	"imagesplit/internal/tracking"
)

// splitOptions は設定ファイルを上書きするフラグ
type splitOptions struct {
	source      string
	dest        string
	seed        int64
	trainRatio  float64
	valRatio    float64
	testRatio   float64
	mode        string
	copyWorkers int
	progress    bool
	archive     string
	track       bool
}

func (o *splitOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.source, "source", "s", "", "元画像ディレクトリ")
	f.StringVarP(&o.dest, "dest", "d", "", "出力先ディレクトリ")
	f.Int64Var(&o.seed, "seed", 42, "シャッフル用シード")
	f.Float64VarP(&o.trainRatio, "train-ratio", "t", 0.70, "教師データの比率")
	f.Float64VarP(&o.valRatio, "val-ratio", "v", 0.15, "検証データの比率")
	f.Float64Var(&o.testRatio, "test-ratio", 0.15, "テストデータの比率")
	f.StringVar(&o.mode, "mode", string(config.ModeMultiTask), "ラベル付け方式 (multi-task, directory)")
	f.IntVarP(&o.copyWorkers, "copy-workers", "w", 1, "ファイルコピーの並列数")
	f.BoolVar(&o.progress, "progress", false, "進捗バーを表示")
	f.StringVar(&o.archive, "archive", "", "出力ツリーのアーカイブ形式 (tar, tar.gz)")
	f.BoolVar(&o.track, "track", false, "実行を記録する")
}

// apply は指定されたフラグだけを設定に反映する
func (o *splitOptions) apply(cmd *cobra.Command, cfg *config.Config, args []string) {
	f := cmd.Flags()
	if f.Changed("source") {
		cfg.RawRoot = o.source
	}
	if f.Changed("dest") {
		cfg.OutputRoot = o.dest
	}
	if len(args) > 0 {
		cfg.RawRoot = args[0]
	}
	if len(args) > 1 {
		cfg.OutputRoot = args[1]
	}
	if f.Changed("seed") {
		cfg.Seed = o.seed
	}
	if f.Changed("train-ratio") {
		cfg.TrainRatio = o.trainRatio
	}
	if f.Changed("val-ratio") {
		cfg.ValRatio = o.valRatio
	}
	if f.Changed("test-ratio") {
		cfg.TestRatio = o.testRatio
	}
	if f.Changed("mode") {
		cfg.Mode = config.Mode(o.mode)
	}
	if f.Changed("copy-workers") {
		cfg.CopyWorkers = o.copyWorkers
	}
	if f.Changed("progress") {
		cfg.Progress = o.progress
	}
	if f.Changed("archive") {
		cfg.Archive = o.archive
	}
	if f.Changed("track") {
		cfg.Tracking.Enabled = o.track
	}
}

func newSplitCmd(a *app) *cobra.Command {
	opts := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split [source] [dest]",
		Short: "画像を分割して出力ツリーにコピーする",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, opts, args)
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *app) runSplit(cmd *cobra.Command, opts *splitOptions, args []string) error {
	cfg := a.cfg
	opts.apply(cmd, cfg, args)

	p := processor.NewPipeline(cfg, a.log)
	if cfg.Tracking.Enabled {
		store, err := tracking.Open(cfg.Tracking.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		p.Tracker = store
	}

	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "画像: %d (train %d / val %d / test %d)\n", result.Images, result.Train, result.Val, result.Test)
	fmt.Fprintln(out, result.Report.Summary())
	if result.ArchivePath != "" {
		fmt.Fprintf(out, "アーカイブ: %s\n", result.ArchivePath)
	}
	if result.RunID != "" {
		a.log.Info("実行を記録しました", zap.String("run_id", result.RunID))
	}
	return nil
}
