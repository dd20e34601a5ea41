package layout

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"imagesplit/internal/config"
	"imagesplit/internal/dataset"
)

// Layout は出力ツリーの構成
// 名前が空のタスクは task 階層を持たない (単一タスク方式)
type Layout struct {
	Root   string
	Tasks  []config.Task
	Splits []dataset.Split
}

// New は全分割を対象とする Layout を返す
func New(root string, tasks []config.Task) Layout {
	return Layout{Root: root, Tasks: tasks, Splits: dataset.Splits}
}

// FromConfig は設定から Layout を組み立てる
func FromConfig(cfg *config.Config) Layout {
	return New(cfg.OutputRoot, cfg.EffectiveTasks())
}

// SplitDir は <root>/[<task>/]<split>
func (l Layout) SplitDir(task string, split dataset.Split) string {
	if task == "" {
		return filepath.Join(l.Root, split.String())
	}
	return filepath.Join(l.Root, task, split.String())
}

// ClassDir は <root>/[<task>/]<split>/<class>
func (l Layout) ClassDir(task string, split dataset.Split, class string) string {
	return filepath.Join(l.SplitDir(task, split), class)
}

// ClassDirs は task x split x class の全ディレクトリを決まった順で返す
func (l Layout) ClassDirs() []string {
	var dirs []string
	for _, task := range l.Tasks {
		for _, split := range l.Splits {
			for _, class := range task.Classes {
				dirs = append(dirs, l.ClassDir(task.Name, split, class))
			}
		}
	}
	return dirs
}

// Error はディレクトリ作成の失敗
type Error struct {
	Dir string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ディレクトリの作成に失敗 %s: %v", e.Dir, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Ensure は出力ツリーをすべて作成する
// 既存のディレクトリはそのままにするので何度呼んでもよい
func (l Layout) Ensure(fs afero.Fs) error {
	for _, dir := range l.ClassDirs() {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return &Error{Dir: dir, Err: err}
		}
	}
	return nil
}

// EnsureLayout は root 配下に tasks x splits x classes のツリーを作成する
// splits 省略時は train/val/test
func EnsureLayout(fs afero.Fs, root string, tasks []config.Task, splits ...dataset.Split) error {
	l := New(root, tasks)
	if len(splits) > 0 {
		l.Splits = splits
	}
	return l.Ensure(fs)
}
