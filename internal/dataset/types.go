package dataset

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// ImageRecord は検出された画像ファイル (絶対パス)
type ImageRecord struct {
	Path string
}

// Name は元のファイル名を返す
func (r ImageRecord) Name() string {
	return filepath.Base(r.Path)
}

// ParentDir は直上のディレクトリ名を返す
func (r ImageRecord) ParentDir() string {
	return filepath.Base(filepath.Dir(r.Path))
}

// Split はデータセットの分割種別
type Split int

const (
	Train Split = iota
	Val
	Test
)

// Splits は全分割を出力順に並べたもの
var Splits = []Split{Train, Val, Test}

func (s Split) String() string {
	switch s {
	case Train:
		return "train"
	case Val:
		return "val"
	case Test:
		return "test"
	default:
		return "unknown"
	}
}

// ParseSplit は分割名から Split を取得
func ParseSplit(name string) (Split, error) {
	for _, s := range Splits {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, errors.Errorf("不明な分割: %s", name)
}

// Assignment は各画像をちょうど1つの分割に割り当てた結果
type Assignment struct {
	Train []ImageRecord
	Val   []ImageRecord
	Test  []ImageRecord
}

// Files は指定分割の画像を返す
func (a Assignment) Files(s Split) []ImageRecord {
	switch s {
	case Train:
		return a.Train
	case Val:
		return a.Val
	case Test:
		return a.Test
	default:
		return nil
	}
}

// Len は割り当て済み画像の総数
func (a Assignment) Len() int {
	return len(a.Train) + len(a.Val) + len(a.Test)
}
