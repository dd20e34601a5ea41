package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FindImageFiles は指定されたディレクトリ内の画像ファイルを再帰的に取得
// 結果はパスの辞書順
func FindImageFiles(fs afero.Fs, dir string, extensions []string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != dir && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isHidden(info.Name()) && HasExtension(path, extensions) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// HasExtension は拡張子が一覧に含まれるかを大文字小文字を区別せずに判定
func HasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
