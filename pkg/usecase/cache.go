package usecase

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// prepareCache creates the cache directory, or empties it unless keep is set.
func prepareCache(ctx context.Context, dir string, keep bool) error {
	logger := ctxlog.From(ctx)

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "unable to create the cache directory", goerr.V("dir", dir))
		}
		logger.Info("Created cache directory", "dir", dir)
		return nil
	}

	if keep {
		logger.Info("Keeping previously downloaded files", "dir", dir)
		return nil
	}

	logger.Info("Clean up all files from old runs", "dir", dir)
	emptyDir(ctx, dir)
	return nil
}

// cleanBuildTarget empties <cache>/<buildTarget> after a customer is published.
func cleanBuildTarget(ctx context.Context, cacheDir, buildTarget string) {
	logger := ctxlog.From(ctx)
	dir := filepath.Join(cacheDir, buildTarget)

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Info("Directory does not exist, nothing to clean up", "dir", dir)
		return
	}

	logger.Info("Clean up all files from this run", "dir", dir)
	emptyDir(ctx, dir)
}

// emptyDir removes every entry in dir. Failures are logged only.
func emptyDir(ctx context.Context, dir string) {
	logger := ctxlog.From(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("Failed to list directory", "error", err, "dir", dir)
		return
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Error("Failed to remove cached file", "error", err, "path", path)
		}
	}
}
