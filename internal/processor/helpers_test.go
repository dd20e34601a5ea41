package processor

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// createMockImages は画像を模したファイルを作成
func createMockImages(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fs, p, []byte("mock image content: "+filepath.Base(p)), 0644))
	}
}

// listFiles は root 配下の通常ファイルを root からの相対パスで返す
func listFiles(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var files []string
	require.NoError(t, afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	}))
	sort.Strings(files)
	return files
}

// failingFs は指定したパスのオープンを失敗させる
type failingFs struct {
	afero.Fs
	fail map[string]bool
}

func (f failingFs) Open(name string) (afero.File, error) {
	if f.fail[name] {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}
