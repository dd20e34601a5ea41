package processor

import (
	"fmt"

	"imagesplit/internal/utils"
)

// SkipRecord はラベルが決まらずコピーしなかった (画像, タスク) の組
type SkipRecord struct {
	Path  string
	Task  string
	Split string
	Label string // Unresolved の場合は空
}

// CopyError はファイル単位のコピー失敗
type CopyError struct {
	Path        string
	Destination string
	Task        string
	Split       string
	Err         error
}

// Reason は失敗理由
func (e CopyError) Reason() string {
	return e.Err.Error()
}

func (e CopyError) Error() string {
	return fmt.Sprintf("ファイルのコピーに失敗 %s -> %s: %v", e.Path, e.Destination, e.Err)
}

func (e CopyError) Unwrap() error {
	return e.Err
}

// Report は出力処理の集計結果
type Report struct {
	Copied  int
	Skipped int
	Bytes   int64
	Skips   []SkipRecord
	Errors  []CopyError
}

// Summary は集計を1行で表す
func (r *Report) Summary() string {
	return fmt.Sprintf("コピー: %d件 (%s), スキップ: %d件, エラー: %d件",
		r.Copied, utils.HumanBytes(r.Bytes), r.Skipped, len(r.Errors))
}

func (r *Report) skip(rec SkipRecord) {
	r.Skipped++
	r.Skips = append(r.Skips, rec)
}
