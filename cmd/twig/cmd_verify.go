package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/odvcencio/twig/pkg/object"
)

func newVerifyCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "verify [--root <hash>]",
		Short: "Verify stored object integrity and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)
			out := cmd.OutOrStdout()

			report, verifyErr := r.Store.Verify()
			if report == nil {
				return verifyErr
			}
			for _, e := range multierr.Errors(verifyErr) {
				fmt.Fprintf(out, "error: %v\n", e)
			}
			fmt.Fprintf(out,
				"verified %d object(s): %d blob(s), %d tree(s), %d commit(s)\n",
				report.Objects, report.Blobs, report.Trees, report.Commits,
			)

			var connErr error
			if root != "" {
				h, err := object.ParseHash(root)
				if err != nil {
					return err
				}
				var visited int
				visited, connErr = r.Store.CheckConnectivity(h)
				for _, e := range multierr.Errors(connErr) {
					fmt.Fprintf(out, "error: %v\n", e)
				}
				fmt.Fprintf(out, "reached %d object(s) from %s\n", visited, h.Short())
			}

			if n := len(multierr.Errors(verifyErr)) + len(multierr.Errors(connErr)); n > 0 {
				return fmt.Errorf("verify: %d problem(s) found", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "also check that everything reachable from this object is present")
	return cmd
}
