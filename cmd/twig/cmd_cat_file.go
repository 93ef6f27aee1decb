package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	var pretty, showType, showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s) <hash>",
		Short: "Print an object's content, type or size",
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
			objType, payload, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(payload))
			case pretty:
				if objType == object.TypeTree {
					entries, err := object.ParseTreeEntries(payload)
					if err != nil {
						return fmt.Errorf("cat-file %s: %w", h, err)
					}
					payload = object.FormatTree(entries)
				}
				if _, err := out.Write(payload); err != nil {
					return err
				}
			default:
				return errors.New("cat-file: one of -p, -t or -s is required")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the payload size in bytes")
	cmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")
	return cmd
}
