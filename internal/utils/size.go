package utils

import (
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var unitMap = map[string]float64{
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
}

// DirBytes はディレクトリ配下の通常ファイルの合計サイズ(バイト)を返す
func DirBytes(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil || !info.IsDir() {
		return 0, errors.Errorf("無効なディレクトリ: %s", path)
	}

	var total int64
	err = afero.Walk(fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			// 読めないエントリは数えない
			return nil
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// DirSize はディレクトリサイズを指定単位(B, KB, MB, GB)で小数第2位まで返す
func DirSize(fs afero.Fs, path, unit string) (float64, error) {
	divisor, ok := unitMap[strings.ToUpper(unit)]
	if !ok {
		return 0, errors.Errorf("未対応の単位: %s (B, KB, MB, GB のいずれか)", unit)
	}

	total, err := DirBytes(fs, path)
	if err != nil {
		return 0, err
	}
	return math.Round(float64(total)/divisor*100) / 100, nil
}

// HumanBytes はバイト数を読みやすい文字列にする
func HumanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
