package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"imagesplit/internal/dataset"
	"imagesplit/internal/label"
	"imagesplit/internal/layout"
	"imagesplit/internal/logger"
)

// Materializer は分割結果を <root>/[<task>/]<split>/<class>/ にコピーする
type Materializer struct {
	Fs       afero.Fs
	Layout   layout.Layout
	Resolver label.Resolver
	Workers  int  // 1以下なら順次コピー
	Progress bool // tqdm の進捗バーを表示
	Logger   *zap.Logger
}

// Materialize は全タスク x 全分割の画像をコピーする
// ラベルが決まらない・クラス一覧にない組はスキップし、コピー失敗は記録して続行する
// ctx がキャンセルされた場合はそれまでの集計と ctx.Err() を返す
func (m *Materializer) Materialize(ctx context.Context, assignment dataset.Assignment) (*Report, error) {
	log := logger.Or(m.Logger)
	runner := &batchRunner{fs: m.Fs, workers: m.Workers, progress: m.Progress, log: log}
	report := &Report{}

	for _, task := range m.Layout.Tasks {
		taskName := task.Name
		if taskName != "" {
			log.Info("タスクを処理中", zap.String("task", taskName))
		}

		for _, split := range m.Layout.Splits {
			files := assignment.Files(split)
			jobs := make([]copyJob, 0, len(files))

			for _, img := range files {
				class, ok := m.Resolver.Resolve(img, task)
				if !ok || !slice.Contain(task.Classes, class) {
					report.skip(SkipRecord{Path: img.Path, Task: taskName, Split: split.String(), Label: class})
					log.Warn("未知のラベルのためスキップ",
						zap.String("path", img.Path),
						zap.String("task", taskName),
						zap.String("split", split.String()),
						zap.String("label", class))
					continue
				}
				jobs = append(jobs, copyJob{
					src:    img.Path,
					dstDir: m.Layout.ClassDir(taskName, split, class),
					task:   taskName,
					split:  split.String(),
				})
			}

			log.Debug("分割を処理中",
				zap.String("task", taskName),
				zap.String("split", split.String()),
				zap.Int("files", len(files)),
				zap.Int("copies", len(jobs)))

			results := runner.run(ctx, jobs, batchDescription(taskName, split))
			for i, res := range results {
				if !res.done {
					continue
				}
				if res.err != nil {
					job := jobs[i]
					copyErr := CopyError{Path: job.src, Destination: job.dst(), Task: job.task, Split: job.split, Err: res.err}
					report.Errors = append(report.Errors, copyErr)
					log.Error("ファイルのコピーに失敗",
						zap.String("path", job.src),
						zap.String("destination", job.dst()),
						zap.Error(res.err))
					continue
				}
				report.Copied++
				report.Bytes += res.bytes
			}

			if err := ctx.Err(); err != nil {
				log.Warn("出力処理を中断しました", zap.Error(err), zap.String("summary", report.Summary()))
				return report, err
			}
		}
	}

	return report, nil
}

func batchDescription(task string, split dataset.Split) string {
	if task == "" {
		return split.String()
	}
	return fmt.Sprintf("%s - %s", strings.ToLower(task), split)
}
