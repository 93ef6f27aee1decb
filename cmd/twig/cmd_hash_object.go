package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
)

func newHashObjectCmd() *cobra.Command {
	var write, stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] (--stdin | <file>)",
		Short: "Compute a blob digest and optionally store it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdin == (len(args) == 1) {
				return errors.New("hash-object: give exactly one of --stdin or a file")
			}

			var data []byte
			var err error
			if stdin {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}

			// Hashing alone works outside a repository.
			h := object.HashObject(object.TypeBlob, data)
			if write {
				r, logger, err := openRepo(cmd)
				if err != nil {
					return err
				}
				defer syncLogger(logger)
				if h, err = r.HashBlob(data, true); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blob into the object store")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read content from standard input")
	return cmd
}
