package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func homeAt(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestResolveOutputPathPrefersMobileDir(t *testing.T) {
	mobile := t.TempDir()
	home := t.TempDir()

	r := &Resolver{MobileDir: mobile, HomeDir: homeAt(home)}

	path, err := r.ResolveOutputPath("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mobile, "report.pdf"), path)

	_, err = os.Stat(filepath.Join(home, DownloadsDirName))
	assert.True(t, os.IsNotExist(err), "home Downloads must not be created when the mobile dir exists")
}

func TestResolveOutputPathCreatesDownloads(t *testing.T) {
	home := t.TempDir()
	r := &Resolver{MobileDir: filepath.Join(t.TempDir(), "missing"), HomeDir: homeAt(home)}

	path, err := r.ResolveOutputPath("good_report.pdf")
	require.NoError(t, err)

	downloads := filepath.Join(home, DownloadsDirName)
	assert.Equal(t, filepath.Join(downloads, "good_report.pdf"), path)

	info, err := os.Stat(downloads)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// second call sees the directory already present
	again, err := r.ResolveOutputPath("good_report.pdf")
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestResolveOutputPathHomeLookupFails(t *testing.T) {
	r := &Resolver{
		MobileDir: filepath.Join(t.TempDir(), "missing"),
		HomeDir:   func() (string, error) { return "", errors.New("$HOME is not defined") },
	}

	_, err := r.ResolveOutputPath("report.pdf")
	require.Error(t, err)

	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Contains(t, err.Error(), "$HOME is not defined")
}

func TestResolveOutputPathCannotCreateDownloads(t *testing.T) {
	// a regular file where the home directory should be
	home := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.WriteFile(home, []byte("x"), 0o644))

	r := &Resolver{MobileDir: "", HomeDir: homeAt(home)}

	_, err := r.ResolveOutputPath("report.pdf")
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "create save directory", pathErr.Op)
}

func TestResolveOutputPathEmptyFilename(t *testing.T) {
	r := &Resolver{MobileDir: t.TempDir()}

	_, err := r.ResolveOutputPath("")
	var pathErr *PathError
	assert.ErrorAs(t, err, &pathErr)
}

func TestWithStrategy(t *testing.T) {
	dir := t.TempDir()
	r := WithStrategy(func() (string, error) { return dir, nil })

	path, err := r.ResolveOutputPath("a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), path)

	failing := WithStrategy(func() (string, error) { return "", errors.New("no storage") })
	_, err = failing.ResolveOutputPath("a.pdf")
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Contains(t, err.Error(), "no storage")
}
