package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// CopyFile は権限と更新時刻を保ったまま単一ファイルをコピー
// 既存の出力先は上書きされる
func CopyFile(fs afero.Fs, src, dst string) (n int64, err error) {
	in, err := fs.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, errors.Errorf("%s はディレクトリです", src)
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	if n, err = io.Copy(out, in); err != nil {
		return n, multierr.Append(err, out.Close())
	}
	// Close で更新時刻が変わるファイルシステムがあるので閉じてから属性を設定する
	if err = out.Close(); err != nil {
		return n, err
	}
	if err = fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, err
	}
	mtime := info.ModTime()
	return n, fs.Chtimes(dst, mtime, mtime)
}

// CopyDirReport はディレクトリコピーの結果
type CopyDirReport struct {
	Succeeded int
	Failed    int
	Bytes     int64
	Elapsed   time.Duration
}

// CopyDirContents は src 直下の各エントリを dst にコピーする
// 失敗したエントリは記録して残りのコピーを続行する
func CopyDirContents(fs afero.Fs, src, dst string) (CopyDirReport, error) {
	var report CopyDirReport
	start := time.Now()

	items, err := afero.ReadDir(fs, src)
	if err != nil {
		return report, errors.Wrapf(err, "コピー元の読み込みに失敗: %s", src)
	}
	if err := fs.MkdirAll(dst, 0755); err != nil {
		return report, errors.Wrapf(err, "コピー先の作成に失敗: %s", dst)
	}

	var errs error
	for _, item := range items {
		from := filepath.Join(src, item.Name())
		to := filepath.Join(dst, item.Name())

		var n int64
		var err error
		if item.IsDir() {
			n, err = copyTree(fs, from, to)
		} else {
			n, err = CopyFile(fs, from, to)
		}
		report.Bytes += n
		if err != nil {
			report.Failed++
			errs = multierr.Append(errs, errors.Wrapf(err, "%s のコピーに失敗", item.Name()))
			continue
		}
		report.Succeeded++
	}

	report.Elapsed = time.Since(start)
	return report, errs
}

// copyTree はディレクトリを再帰的にコピー (既存ディレクトリは許容)
func copyTree(fs afero.Fs, src, dst string) (int64, error) {
	var total int64
	err := afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fs.MkdirAll(target, info.Mode().Perm()|0700)
		}
		n, err := CopyFile(fs, path, target)
		total += n
		return err
	})
	return total, err
}
