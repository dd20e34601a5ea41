package config

import (
	"os"
	"runtime"
	"sort"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"imagesplit/internal/logger"
	"imagesplit/internal/split"
)

// Mode はラベル付けの方式
type Mode string

const (
	// ModeMultiTask はファイル名からタスクごとのラベルを推定する
	ModeMultiTask Mode = "multi-task"
	// ModeDirectory は直上のフォルダ名を ClassMapping で変換する単一タスク方式
	ModeDirectory Mode = "directory"
)

// TaskKind はタスクの種類
type TaskKind string

// KindClassification は分類タスク
const KindClassification TaskKind = "classification"

// Task はタスク名と順序付きクラス一覧
type Task struct {
	Name    string   `yaml:"name"`
	Classes []string `yaml:"classes"`
	Type    TaskKind `yaml:"type"`
}

// TrackingConfig は実験記録の設定
type TrackingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	DSN        string `yaml:"dsn"`
	Experiment string `yaml:"experiment"`
}

// Config は設定情報を保持
type Config struct {
	RawRoot      string            `yaml:"raw_root"`      // 元画像ディレクトリ
	OutputRoot   string            `yaml:"output_root"`   // 出力先ディレクトリ
	Seed         int64             `yaml:"seed"`          // シャッフル用シード
	TrainRatio   float64           `yaml:"train_ratio"`   // 教師データ比率
	ValRatio     float64           `yaml:"val_ratio"`     // 検証データ比率
	TestRatio    float64           `yaml:"test_ratio"`    // テストデータ比率
	Mode         Mode              `yaml:"mode"`          // ラベル付け方式
	Tasks        []Task            `yaml:"tasks"`         // マルチタスク時のタスク定義
	ClassMapping map[string]string `yaml:"class_mapping"` // フォルダ名 -> クラス名
	Classes      []string          `yaml:"classes"`       // 単一タスク時のクラス一覧
	Extensions   []string          `yaml:"extensions"`    // 対象拡張子
	CopyWorkers  int               `yaml:"copy_workers"`  // ファイルコピーの並列数
	Progress     bool              `yaml:"progress"`      // 進捗バー表示
	Archive      string            `yaml:"archive"`       // "", "tar", "tar.gz"
	Log          logger.Config     `yaml:"log"`
	Tracking     TrackingConfig    `yaml:"tracking"`
}

// DefaultTasks は年齢・性別・表情・人種の4タスク
func DefaultTasks() []Task {
	return []Task{
		{
			Name:    "age",
			Classes: []string{"0-2", "3-9", "10-19", "20-29", "30-39", "40-49", "50-59", "60-69", "70+"},
			Type:    KindClassification,
		},
		{
			Name:    "gender",
			Classes: []string{"male", "female"},
			Type:    KindClassification,
		},
		{
			Name:    "expression",
			Classes: []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"},
			Type:    KindClassification,
		},
		{
			Name:    "race",
			Classes: []string{"white", "black", "asian", "indian", "others"},
			Type:    KindClassification,
		},
	}
}

// DefaultClassMapping は二値分類用のフォルダ名対応表
func DefaultClassMapping() map[string]string {
	return map[string]string{"0": "female", "1": "male"}
}

// NewDefaultConfig はデフォルト設定を返す
func NewDefaultConfig() *Config {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &Config{
		RawRoot:      "data/raw",
		OutputRoot:   "data/processed",
		Seed:         42,
		TrainRatio:   0.70,
		ValRatio:     0.15,
		TestRatio:    0.15,
		Mode:         ModeMultiTask,
		Tasks:        DefaultTasks(),
		ClassMapping: DefaultClassMapping(),
		Extensions:   []string{".jpg", ".jpeg", ".png"},
		CopyWorkers:  workers,
		Log:          logger.DefaultConfig(),
		Tracking: TrackingConfig{
			DSN:        "mlruns/tracking.db",
			Experiment: "dataset-split",
		},
	}
}

// Load は YAML ファイルをデフォルト設定に重ねて読み込む
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "設定ファイルの読み込みに失敗: %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "設定ファイルの解析に失敗: %s", path)
	}
	return cfg, nil
}

// Parse は YAML をデフォルト設定に重ねる
// class_mapping は指定された場合デフォルトと混ぜずに置き換える
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	defaultMapping := cfg.ClassMapping
	cfg.ClassMapping = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.ClassMapping == nil {
		cfg.ClassMapping = defaultMapping
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].Type == "" {
			cfg.Tasks[i].Type = KindClassification
		}
	}
	return cfg, nil
}

// Serialize は設定を YAML にする
func (c *Config) Serialize() ([]byte, error) {
	return yaml.Marshal(c)
}

// Ratios は分割比率を返す
func (c *Config) Ratios() split.Ratios {
	return split.Ratios{Train: c.TrainRatio, Val: c.ValRatio, Test: c.TestRatio}
}

// SplitSizes は総数 n に対する train/val/test の件数を返す
func (c *Config) SplitSizes(n int) (nTrain, nVal, nTest int) {
	return split.Sizes(n, c.Ratios())
}

// SingleTaskClasses は単一タスク方式のクラス一覧
// Classes が未指定なら ClassMapping の値をキー順に重複なく並べる
func (c *Config) SingleTaskClasses() []string {
	if len(c.Classes) > 0 {
		return c.Classes
	}
	keys := maputil.Keys(c.ClassMapping)
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, c.ClassMapping[k])
	}
	return slice.Unique(values)
}

// EffectiveTasks は出力ツリーを構成するタスク一覧
// 単一タスク方式では名前が空のタスクを1つ返す (出力に task 階層を作らない)
func (c *Config) EffectiveTasks() []Task {
	if c.Mode == ModeDirectory {
		return []Task{{Classes: c.SingleTaskClasses(), Type: KindClassification}}
	}
	return c.Tasks
}
