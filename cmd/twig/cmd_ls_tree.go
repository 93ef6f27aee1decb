package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
)

func newLsTreeCmd() *cobra.Command {
	var nameOnly, recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [--name-only] [-r] <tree>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if recursive {
				files, err := r.FlattenTree(h)
				if err != nil {
					return err
				}
				for _, f := range files {
					if nameOnly {
						fmt.Fprintln(out, f.Path)
						continue
					}
					entry := object.TreeEntry{Mode: f.Mode, Name: f.Path, Hash: f.Hash}
					if _, err := out.Write(object.FormatTree([]object.TreeEntry{entry})); err != nil {
						return err
					}
				}
				return nil
			}

			if nameOnly {
				names, err := r.ListTreeNames(h)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			entries, err := r.ListTree(h)
			if err != nil {
				return err
			}
			_, err = out.Write(object.FormatTree(entries))
			return err
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only entry names")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees and print full paths")
	return cmd
}
