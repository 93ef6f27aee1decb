package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	// ErrRepositoryExists is returned by Init when the metadata directory
	// is already present.
	ErrRepositoryExists = errors.New("repository already exists")
	// ErrNotRepository is returned by Open when no metadata directory is
	// found in the path or any of its parents.
	ErrNotRepository = errors.New("not a repository")
)

// Init creates a new repository at path. It creates the .git/ directory
// structure: HEAD, objects/, and refs/heads/. Returns an error if a .git/
// directory already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	o := newOptions(opts)
	gitDir := filepath.Join(path, MetaDir)

	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrRepositoryExists, gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gitDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	o.logger.Debug("repository initialized", zap.String("dir", gitDir))
	return newRepo(path, gitDir, DefaultConfig(), o), nil
}

// Open searches upward from path for a .git/ directory and opens the
// repository, applying its configuration.
func Open(path string, opts ...Option) (*Repo, error) {
	o := newOptions(opts)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, MetaDir)
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			cfg, err := readConfigFile(configPath(gitDir))
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return newRepo(cur, gitDir, cfg, o), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w (or any parent up to /)", ErrNotRepository)
		}
		cur = parent
	}
}
