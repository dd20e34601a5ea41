package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"imagesplit/internal/layout"
	"imagesplit/internal/tracking"
	"imagesplit/internal/utils"
)

func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "出力ディレクトリ構造だけを作成する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			l := layout.FromConfig(a.cfg)
			if err := l.Ensure(afero.NewOsFs()); err != nil {
				return err
			}
			a.log.Info("出力ディレクトリを作成しました",
				zap.String("root", l.Root),
				zap.Int("dirs", len(l.ClassDirs())))
			return nil
		},
	}
}

func newSizeCmd(a *app) *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "size DIR",
		Short: "ディレクトリ配下のファイルサイズ合計を表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := utils.DirSize(afero.NewOsFs(), args[0], unit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f %s\n", size, unit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "MB", "単位 (B, KB, MB, GB)")
	return cmd
}

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy SRC DST",
		Short: "ディレクトリの中身をコピーする",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := utils.CopyDirContents(afero.NewOsFs(), args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "成功: %d, 失敗: %d, %s, %s\n",
				report.Succeeded, report.Failed, utils.HumanBytes(report.Bytes), report.Elapsed)
			if err != nil {
				a.log.Warn("一部のコピーに失敗しました", zap.Error(err))
				return errors.Wrapf(err, "%s -> %s", args[0], args[1])
			}
			return nil
		},
	}
}

func newExperimentCmd(a *app) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "実験記録を参照する",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "記録用データベース (省略時は設定ファイルの値)")

	open := func(cmd *cobra.Command) (*tracking.Store, error) {
		if !cmd.Flags().Changed("dsn") {
			dsn = a.cfg.Tracking.DSN
		}
		return tracking.Open(dsn)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "id NAME",
		Short: "実験 ID を表示する (なければ作成)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.GetOrCreateExperimentID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}, &cobra.Command{
		Use:   "last-run NAME",
		Short: "最新の実行 ID を表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			id, ok, err := store.LastRunID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("実験 %s に実行記録がありません", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})
	return cmd
}
