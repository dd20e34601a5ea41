package label

import (
	"sort"

	"imagesplit/internal/config"
	"imagesplit/internal/dataset"
)

// DirectoryResolver は直上のフォルダ名をクラスキーとして対応表で変換する
type DirectoryResolver struct {
	Mapping map[string]string
}

// NewDirectoryResolver は DirectoryResolver を返す
func NewDirectoryResolver(mapping map[string]string) *DirectoryResolver {
	return &DirectoryResolver{Mapping: mapping}
}

// Resolve は対応表にないキーの場合 ok=false を返す
func (r *DirectoryResolver) Resolve(img dataset.ImageRecord, _ config.Task) (string, bool) {
	class, ok := r.Mapping[img.ParentDir()]
	return class, ok
}

// UnmappedKeys は画像の直上フォルダ名のうち対応表にないクラスキーを重複なく返す
func (r *DirectoryResolver) UnmappedKeys(images []dataset.ImageRecord) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, img := range images {
		key := img.ParentDir()
		if _, ok := r.Mapping[key]; ok || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
