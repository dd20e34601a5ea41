package processor

import (
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"
	"github.com/pkg/errors"
)

// ArchiveFormat はアーカイブ形式
type ArchiveFormat string

const (
	ArchiveTar   ArchiveFormat = "tar"
	ArchiveTarGz ArchiveFormat = "tar.gz"
)

// ArchivePath は出力ディレクトリと同じ階層に置くアーカイブのパス
func ArchivePath(outputRoot string, format ArchiveFormat) string {
	root := filepath.Clean(outputRoot)
	return filepath.Join(filepath.Dir(root), filepath.Base(root)+"."+string(format))
}

// CreateArchive は sourceDir をトップレベルに含むアーカイブを作成する
// 既存のアーカイブは上書きする
func CreateArchive(sourceDir, destination string, format ArchiveFormat) error {
	var a interface {
		Archive(sources []string, destination string) error
	}
	switch format {
	case ArchiveTar:
		t := archiver.NewTar()
		t.OverwriteExisting = true
		t.MkdirAll = true
		a = t
	case ArchiveTarGz:
		t := archiver.NewTarGz()
		t.OverwriteExisting = true
		t.MkdirAll = true
		a = t
	default:
		return errors.Errorf("未対応のアーカイブ形式: %s", format)
	}

	if !strings.HasSuffix(destination, "."+string(format)) {
		return errors.Errorf("アーカイブ名の拡張子が %s ではありません: %s", format, destination)
	}
	if err := a.Archive([]string{sourceDir}, destination); err != nil {
		return errors.Wrapf(err, "アーカイブの作成に失敗: %s", destination)
	}
	return nil
}
