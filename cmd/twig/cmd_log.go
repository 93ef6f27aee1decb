package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [-n N] <commit>",
		Short: "Show first-parent history of a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)
			start, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}

			entries, err := r.Log(start, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				c := entry.Commit
				if oneline {
					subject, _, _ := strings.Cut(c.Message, "\n")
					fmt.Fprintf(out, "%s %s\n", entry.Hash.Short(), subject)
					continue
				}
				fmt.Fprintf(out, "commit %s\n", entry.Hash)
				fmt.Fprintf(out, "Author: %s\n", c.Author.Identity)
				fmt.Fprintf(out, "Date:   %s\n", c.Author.When.Format("2006-01-02 15:04:05 -0700"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimSuffix(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show (0 for all)")
	return cmd
}
