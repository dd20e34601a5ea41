package label

import (
	"strings"

	"imagesplit/internal/config"
	"imagesplit/internal/dataset"
)

const (
	// DefaultAgeGroup は年齢タスクで常に返す年齢層 (ファイル名は解析しない)
	DefaultAgeGroup = "20-29"
	// Unknown は規則のないタスクに返すラベル
	Unknown = "unknown"
)

// DefaultClasses はどのクラス名も一致しなかった場合の既定値
var DefaultClasses = map[string]string{
	"expression": "neutral",
	"race":       "others",
}

// FilenameResolver は小文字化したファイル名の部分文字列からラベルを推定する
//
// gender は "male" を含むかどうかだけで判定するため "female" を含む名前も male になる。
// 既知の曖昧さだが既存データとの互換のため判定順は変えない。
type FilenameResolver struct {
	Defaults map[string]string
}

// NewFilenameResolver は既定値付きの FilenameResolver を返す
func NewFilenameResolver() *FilenameResolver {
	defaults := make(map[string]string, len(DefaultClasses))
	for k, v := range DefaultClasses {
		defaults[k] = v
	}
	return &FilenameResolver{Defaults: defaults}
}

// Resolve は常に何らかのラベルを返す
func (r *FilenameResolver) Resolve(img dataset.ImageRecord, task config.Task) (string, bool) {
	filename := strings.ToLower(img.Name())

	switch task.Name {
	case "age":
		return DefaultAgeGroup, true
	case "gender":
		if strings.Contains(filename, "male") {
			return "male", true
		}
		return "female", true
	}

	fallback, hasDefault := r.Defaults[task.Name]
	if !hasDefault {
		return Unknown, true
	}
	for _, class := range task.Classes {
		if strings.Contains(filename, class) {
			return class, true
		}
	}
	return fallback, true
}
