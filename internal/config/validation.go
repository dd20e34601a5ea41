package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/duke-git/lancet/v2/slice"

	"imagesplit/internal/logger"
)

// ratioTolerance は比率の合計を 1.0 とみなす許容誤差
const ratioTolerance = 1e-6

// ValidationError は設定項目ごとの検証エラー
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors は検証エラーの一覧
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return fmt.Sprintf("設定の検証に失敗しました:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Fields はエラーのあった項目名を返す
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i := range e {
		fields[i] = e[i].Field
	}
	return fields
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field, format string, args ...interface{}) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate は設定の妥当性をチェック
// 問題があれば ValidationErrors を返す
func (c *Config) Validate() error {
	v := &validator{}

	if c.RawRoot == "" {
		v.add("raw_root", "ソースディレクトリが指定されていません")
	}
	if c.OutputRoot == "" {
		v.add("output_root", "出力先ディレクトリが指定されていません")
	}

	v.validateRatios(c)

	switch c.Mode {
	case ModeMultiTask:
		v.validateTasks(c.Tasks)
	case ModeDirectory:
		v.validateDirectoryMode(c)
	default:
		v.add("mode", "不明なモード %q (%s または %s)", c.Mode, ModeMultiTask, ModeDirectory)
	}

	if len(c.Extensions) == 0 {
		v.add("extensions", "拡張子が1つも指定されていません")
	}
	if c.CopyWorkers < 1 {
		v.add("copy_workers", "コピーワーカー数は1以上である必要があります")
	}
	if c.Archive != "" && c.Archive != "tar" && c.Archive != "tar.gz" {
		v.add("archive", "アーカイブ形式は tar または tar.gz です: %q", c.Archive)
	}
	switch c.Log.Output {
	case "stdout", "file", "both":
	default:
		v.add("log.output", "ログ出力先は stdout, file, both のいずれかです: %q", c.Log.Output)
	}
	if logger.WritesFile(c.Log.Output) && c.Log.FilePath == "" {
		v.add("log.file_path", "ログファイルのパスが指定されていません")
	}
	if c.Tracking.Enabled && c.Tracking.Experiment == "" {
		v.add("tracking.experiment", "実験名が指定されていません")
	}

	if len(v.errs) > 0 {
		return v.errs
	}
	return nil
}

func (v *validator) validateRatios(c *Config) {
	ratios := []struct {
		field string
		value float64
	}{
		{"train_ratio", c.TrainRatio},
		{"val_ratio", c.ValRatio},
		{"test_ratio", c.TestRatio},
	}
	for _, r := range ratios {
		if r.value < 0 || r.value >= 1 || math.IsNaN(r.value) {
			v.add(r.field, "比率は0.0以上1.0未満である必要があります: %v", r.value)
		}
	}

	sum := c.TrainRatio + c.ValRatio + c.TestRatio
	if math.Abs(sum-1.0) > ratioTolerance {
		v.add("ratios", "比率の合計が1.0ではありません: %v", sum)
	}
}

func (v *validator) validateTasks(tasks []Task) {
	if len(tasks) == 0 {
		v.add("tasks", "タスクが定義されていません")
		return
	}

	var names []string
	for i, task := range tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if !isPathSegment(task.Name) {
			v.add(field+".name", "タスク名が不正です: %q", task.Name)
		} else if slice.Contain(names, task.Name) {
			v.add(field+".name", "タスク名が重複しています: %s", task.Name)
		}
		names = append(names, task.Name)

		if task.Type != KindClassification {
			v.add(field+".type", "未対応のタスク種別: %q", task.Type)
		}
		v.validateClasses(field+".classes", task.Classes)
	}
}

func (v *validator) validateDirectoryMode(c *Config) {
	if len(c.ClassMapping) == 0 {
		v.add("class_mapping", "クラス対応表が空です")
		return
	}

	classes := c.SingleTaskClasses()
	v.validateClasses("classes", classes)
	for key, class := range c.ClassMapping {
		if !slice.Contain(classes, class) {
			v.add("class_mapping", "%q の対応先 %q がクラス一覧にありません", key, class)
		}
	}
}

func (v *validator) validateClasses(field string, classes []string) {
	if len(classes) == 0 {
		v.add(field, "クラス一覧が空です")
		return
	}
	if len(slice.Unique(classes)) != len(classes) {
		v.add(field, "クラス名が重複しています: %v", classes)
	}
	for _, class := range classes {
		if !isPathSegment(class) {
			v.add(field, "クラス名が不正です: %q", class)
		}
	}
}

// isPathSegment はディレクトリ名1階層として使える名前かを判定
func isPathSegment(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && name == filepath.Clean(name)
}
