package dataset

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"imagesplit/internal/logger"
	"imagesplit/internal/utils"
)

// ErrNoImages は画像ファイルが1件も見つからなかったことを示す
var ErrNoImages = errors.New("画像ファイルが見つかりません")

// DefaultExtensions は対象とする画像拡張子
var DefaultExtensions = []string{".jpg", ".jpeg", ".png"}

// Discover は rawRoot 配下の画像ファイルを再帰的に列挙する
// 0件の場合は ErrNoImages を返す
func Discover(fs afero.Fs, rawRoot string, extensions []string, log *zap.Logger) ([]ImageRecord, error) {
	log = logger.Or(log)
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	root, err := filepath.Abs(rawRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "パスの解決に失敗: %s", rawRoot)
	}

	paths, err := utils.FindImageFiles(fs, root, extensions)
	if err != nil {
		return nil, errors.Wrapf(err, "画像ファイルの取得に失敗: %s", root)
	}

	if len(paths) == 0 {
		log.Error("画像ファイルが見つかりません", zap.String("root", root), zap.Strings("extensions", extensions))
		return nil, ErrNoImages
	}

	images := make([]ImageRecord, len(paths))
	for i, p := range paths {
		images[i] = ImageRecord{Path: p}
	}
	log.Info("画像ファイルを検出しました", zap.Int("count", len(images)), zap.String("root", root))
	return images, nil
}
