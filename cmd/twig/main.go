package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/repo"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "twig",
		Short:         "Content-addressed snapshots of a directory tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log store activity to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newCommitTreeCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newVerifyCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "twig %s\n", version)
		},
	}
}

// newLogger builds the CLI logger. Without --verbose only warnings and
// errors reach stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	// Subcommands built on their own have no inherited flag set.
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose = false
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("twig").With(zap.String("command", cmd.Name())), nil
}

// syncLogger flushes buffered entries. Sync on a terminal stderr fails with
// EINVAL on some platforms, so its error is dropped.
func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}

// openRepo opens the repository containing the current directory. Callers
// defer syncLogger on the returned logger.
func openRepo(cmd *cobra.Command) (*repo.Repo, *zap.Logger, error) {
	logger, err := commandLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	r, err := repo.Open(".", repo.WithLogger(logger))
	if err != nil {
		syncLogger(logger)
		return nil, nil, err
	}
	return r, logger, nil
}
