package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MobileDownloadDir is the shared download directory on Android devices
const MobileDownloadDir = "/storage/emulated/0/Download"

// DownloadsDirName is the directory created under the user's home when no
// mobile download directory is present
const DownloadsDirName = "Downloads"

// PathError reports a failure to determine or create the save directory
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// DirectoryStrategy picks the directory reports are saved into
type DirectoryStrategy func() (string, error)

// Resolver resolves output paths for generated reports
type Resolver struct {
	MobileDir string
	HomeDir   func() (string, error)
	strategy  DirectoryStrategy
}

// NewResolver creates a resolver using the platform download conventions
func NewResolver() *Resolver {
	r := &Resolver{
		MobileDir: MobileDownloadDir,
		HomeDir:   os.UserHomeDir,
	}
	r.strategy = r.SaveDir
	return r
}

// WithStrategy returns a resolver that uses the given directory strategy
// instead of the platform conventions
func WithStrategy(strategy DirectoryStrategy) *Resolver {
	return &Resolver{strategy: strategy}
}

// SaveDir returns the mobile download directory when it exists, otherwise the
// home Downloads directory, creating it if missing.
func (r *Resolver) SaveDir() (string, error) {
	if r.MobileDir != "" {
		_, err := os.Stat(r.MobileDir)
		if err == nil {
			return r.MobileDir, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", &PathError{Op: "stat mobile directory", Path: r.MobileDir, Err: err}
		}
	}

	homeDir := r.HomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}
	home, err := homeDir()
	if err != nil {
		return "", &PathError{Op: "lookup home directory", Err: err}
	}

	dir := filepath.Join(home, DownloadsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &PathError{Op: "create save directory", Path: dir, Err: err}
	}
	return dir, nil
}

// ResolveOutputPath joins the save directory with filename
func (r *Resolver) ResolveOutputPath(filename string) (string, error) {
	if filename == "" {
		return "", &PathError{Op: "resolve output path", Err: errors.New("empty filename")}
	}

	strategy := r.strategy
	if strategy == nil {
		strategy = r.SaveDir
	}

	dir, err := strategy()
	if err != nil {
		var pathErr *PathError
		if errors.As(err, &pathErr) {
			return "", err
		}
		return "", &PathError{Op: "resolve save directory", Err: err}
	}

	return filepath.Join(dir, filename), nil
}
