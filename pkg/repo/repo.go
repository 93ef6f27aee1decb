package repo

import (
	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

// MetaDir is the name of the metadata directory at the worktree root. Tree
// building skips it at the root only.
const MetaDir = ".git"

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store

	logger *zap.Logger
}

// Option configures how a repository is opened.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newRepo(rootDir, gitDir string, cfg *Config, o *options) *Repo {
	logger := o.logger.With(zap.String("repo", rootDir))
	return &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		Store: object.NewStore(gitDir,
			object.WithLogger(logger.Named("store")),
			object.WithCompressionLevel(cfg.Core.Compression),
		),
		logger: logger,
	}
}
