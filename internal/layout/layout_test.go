package layout

import (
	"os"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagesplit/internal/config"
	"imagesplit/internal/dataset"
)

func listDirs(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var dirs []string
	require.NoError(t, afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	}))
	sort.Strings(dirs)
	return dirs
}

func TestEnsureMultiTask(t *testing.T) {
	fs := afero.NewMemMapFs()
	tasks := []config.Task{
		{Name: "gender", Classes: []string{"male", "female"}},
		{Name: "age", Classes: []string{"20-29"}},
	}

	require.NoError(t, EnsureLayout(fs, "/out", tasks))

	for _, dir := range []string{
		"/out/gender/train/male", "/out/gender/val/female", "/out/gender/test/male",
		"/out/age/train/20-29", "/out/age/val/20-29", "/out/age/test/20-29",
	} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
	assert.Len(t, New("/out", tasks).ClassDirs(), 9)
}

func TestEnsureIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := FromConfig(config.NewDefaultConfig())
	l.Root = "/out"

	require.NoError(t, l.Ensure(fs))
	before := listDirs(t, fs, "/out")
	require.NoError(t, l.Ensure(fs))
	assert.Equal(t, before, listDirs(t, fs, "/out"))
	// 4タスク x 3分割 x (9+2+7+5) クラス
	assert.Len(t, l.ClassDirs(), 3*23)
}

func TestEnsureSingleTask(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.NewDefaultConfig()
	cfg.Mode = config.ModeDirectory
	cfg.OutputRoot = "/out"

	require.NoError(t, FromConfig(cfg).Ensure(fs))
	assert.Equal(t, []string{
		"/out",
		"/out/test", "/out/test/female", "/out/test/male",
		"/out/train", "/out/train/female", "/out/train/male",
		"/out/val", "/out/val/female", "/out/val/male",
	}, listDirs(t, fs, "/out"))
}

func TestEnsureCustomSplits(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, EnsureLayout(fs, "/out", []config.Task{{Classes: []string{"a"}}}, dataset.Train))
	assert.Equal(t, []string{"/out", "/out/train", "/out/train/a"}, listDirs(t, fs, "/out"))
}

func TestEnsureFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := EnsureLayout(fs, "/out", []config.Task{{Name: "t", Classes: []string{"a"}}})
	require.Error(t, err)

	var layoutErr *Error
	require.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, "/out/t/train/a", layoutErr.Dir)
}

func TestPaths(t *testing.T) {
	l := New("/out", nil)
	assert.Equal(t, "/out/train", l.SplitDir("", dataset.Train))
	assert.Equal(t, "/out/age/val", l.SplitDir("age", dataset.Val))
	assert.Equal(t, "/out/age/test/70+", l.ClassDir("age", dataset.Test, "70+"))
}
