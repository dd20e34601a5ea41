// Package tracking は分割の実行履歴を SQLite に記録する
package tracking

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Experiment は実行をまとめる名前付きの実験
type Experiment struct {
	ID        string `gorm:"primarykey;size:36"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// Run は1回の分割実行
type Run struct {
	ID           uint   `gorm:"primarykey"`
	RunID        string `gorm:"uniqueIndex;size:36;not null"`
	ExperimentID string `gorm:"index;size:36;not null"`
	Status       string
	StartedAt    time.Time `gorm:"index"`
	FinishedAt   *time.Time
	Params       []RunParam  `gorm:"foreignKey:RunID;references:RunID"`
	Metrics      []RunMetric `gorm:"foreignKey:RunID;references:RunID"`
}

// RunParam は実行時の設定値
type RunParam struct {
	ID    uint   `gorm:"primarykey"`
	RunID string `gorm:"index;size:36;not null"`
	Key   string `gorm:"not null"`
	Value string
}

// RunMetric は実行結果の数値
type RunMetric struct {
	ID    uint   `gorm:"primarykey"`
	RunID string `gorm:"index;size:36;not null"`
	Key   string `gorm:"not null"`
	Value float64
}

// 実行の状態
const (
	StatusRunning = "RUNNING"
)

// ErrRunNotFound は指定した実行が存在しない
var ErrRunNotFound = errors.New("実行記録が見つかりません")

// Store は実験記録のデータベース
type Store struct {
	db *gorm.DB
}

// Open は dsn の SQLite データベースを開きテーブルを作成する
func Open(dsn string) (*Store, error) {
	if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "記録用ディレクトリの作成に失敗: %s", dir)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "データベースを開けません: %s", dsn)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite は同時書き込みできない
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Experiment{}, &Run{}, &RunParam{}, &RunMetric{}); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "テーブルの作成に失敗")
	}
	return &Store{db: db}, nil
}

// Close はデータベースを閉じる
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetOrCreateExperimentID は名前に対応する実験 ID を返す
// 存在しなければ作成する
func (s *Store) GetOrCreateExperimentID(ctx context.Context, name string) (string, error) {
	var exp Experiment
	err := s.db.WithContext(ctx).
		Where(Experiment{Name: name}).
		Attrs(Experiment{ID: uuid.NewString()}).
		FirstOrCreate(&exp).Error
	if err != nil {
		return "", errors.Wrapf(err, "実験の取得に失敗: %s", name)
	}
	return exp.ID, nil
}

// LastRunID は実験の最新の実行 ID を返す
// 実行が1件もなければ ok=false
func (s *Store) LastRunID(ctx context.Context, experiment string) (id string, ok bool, err error) {
	expID, err := s.GetOrCreateExperimentID(ctx, experiment)
	if err != nil {
		return "", false, err
	}

	var runs []Run
	err = s.db.WithContext(ctx).
		Where("experiment_id = ?", expID).
		Order("started_at desc").
		Order("id desc").
		Limit(1).
		Find(&runs).Error
	if err != nil {
		return "", false, errors.Wrapf(err, "実行記録の検索に失敗: %s", experiment)
	}
	if len(runs) == 0 {
		return "", false, nil
	}
	return runs[0].RunID, true, nil
}

// StartRun は実行を開始状態で記録し実行 ID を返す
func (s *Store) StartRun(ctx context.Context, experiment string, params map[string]string) (string, error) {
	expID, err := s.GetOrCreateExperimentID(ctx, experiment)
	if err != nil {
		return "", err
	}

	run := Run{
		RunID:        uuid.NewString(),
		ExperimentID: expID,
		Status:       StatusRunning,
		StartedAt:    time.Now(),
	}
	keys := maputil.Keys(params)
	sort.Strings(keys)
	for _, k := range keys {
		run.Params = append(run.Params, RunParam{Key: k, Value: params[k]})
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return "", errors.Wrap(err, "実行記録の作成に失敗")
	}
	return run.RunID, nil
}

// FinishRun は実行の状態と結果を記録する
func (s *Store) FinishRun(ctx context.Context, runID, status string, metrics map[string]float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&Run{}).
			Where("run_id = ?", runID).
			Updates(map[string]interface{}{"status": status, "finished_at": &now})
		if res.Error != nil {
			return errors.Wrapf(res.Error, "実行記録の更新に失敗: %s", runID)
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrRunNotFound, runID)
		}

		keys := maputil.Keys(metrics)
		sort.Strings(keys)
		for _, k := range keys {
			if err := tx.Create(&RunMetric{RunID: runID, Key: k, Value: metrics[k]}).Error; err != nil {
				return errors.Wrapf(err, "結果の記録に失敗: %s", k)
			}
		}
		return nil
	})
}

// GetRun は実行記録を設定値と結果付きで返す
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Preload("Params").
		Preload("Metrics").
		Where("run_id = ?", runID).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
