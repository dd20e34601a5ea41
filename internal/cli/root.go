// Package cli は imagesplit のコマンドライン
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"imagesplit/internal/config"
	"imagesplit/internal/logger"
)

// app はコマンド間で共有する状態
type app struct {
	configPath string
	logLevel   string
	logOutput  string

	cfg *config.Config
	log *zap.Logger
}

// load は設定ファイルを読み込みロガーを初期化する
func (a *app) load(cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-output") {
		cfg.Log.Output = a.logOutput
	}

	logger.Init(&cfg.Log)
	a.cfg = cfg
	a.log = logger.L()
	return nil
}

// NewRootCmd はルートコマンドを作成する
// サブコマンドを省略した場合は split を実行する
func NewRootCmd() *cobra.Command {
	a := &app{}
	split := &splitOptions{}

	cmd := &cobra.Command{
		Use:           "imagesplit [source] [dest]",
		Short:         "画像データセットを train/val/test に分割する",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, split, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "設定ファイル (YAML)")
	pf.StringVar(&a.logLevel, "log-level", "info", "ログレベル (debug, info, warn, error)")
	pf.StringVar(&a.logOutput, "log-output", "both", "ログ出力先 (stdout, file, both)")
	split.register(cmd)

	cmd.AddCommand(
		newSplitCmd(a),
		newLayoutCmd(a),
		newSizeCmd(a),
		newCopyCmd(a),
		newExperimentCmd(a),
	)
	return cmd
}

// Execute はコマンドを実行し、失敗した場合は終了コード1で終了する
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.L().Error("処理に失敗しました", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
