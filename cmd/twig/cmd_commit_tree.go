package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
	"github.com/odvcencio/twig/pkg/repo"
)

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Snapshot the working directory as tree objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newCommitTreeCmd() *cobra.Command {
	var parent, message, author string
	var date int64

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>] -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			var id object.Identity
			if strings.TrimSpace(author) != "" {
				id, err = repo.ParseIdentity(author)
			} else {
				id, err = r.Identity()
			}
			if err != nil {
				return fmt.Errorf("commit-tree: %w", err)
			}

			when := time.Now()
			if cmd.Flags().Changed("date") {
				when = time.Unix(date, 0).UTC()
			}

			h, err := r.CommitTree(object.Hash(args[0]), object.Hash(parent), message, id, when)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent commit hash")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", `author and committer as "Name <email>"`)
	cmd.Flags().Int64Var(&date, "date", 0, "commit time as unix seconds (UTC)")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
