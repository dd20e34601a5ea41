// Package label はタスクごとのクラスラベルを決定する。
//
// マルチタスク方式 (FilenameResolver) はファイル名の部分文字列から推定し、
// 単一タスク方式 (DirectoryResolver) は直上のフォルダ名を対応表で変換する。
// どちらの結果もタスクのクラス一覧に含まれるかは呼び出し側で検証する。
package label

import (
	"imagesplit/internal/config"
	"imagesplit/internal/dataset"
)

// Resolver は (画像, タスク) に対するラベルを返す
// ok が false の場合は Unresolved であり、その組はコピーしない
type Resolver interface {
	Resolve(img dataset.ImageRecord, task config.Task) (label string, ok bool)
}

// New は設定のモードに応じた Resolver を返す
func New(cfg *config.Config) Resolver {
	if cfg.Mode == config.ModeDirectory {
		return NewDirectoryResolver(cfg.ClassMapping)
	}
	return NewFilenameResolver()
}
