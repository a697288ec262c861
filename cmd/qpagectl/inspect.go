package main

import (
	"github.com/spf13/cobra"

	"github.com/tidalware/qpage/ring"
)

func newInspectCmd() *cobra.Command {
	var dir string
	var seq uint64

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a page's path and whether it has been created yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ring.Open(dir, ring.DefaultConfig)
			if err != nil {
				return err
			}
			cmd.Printf("page %d -> %s (exists: %v)\n", seq, r.PagePath(seq), r.Exists(seq))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "channel directory")
	cmd.Flags().Uint64VarP(&seq, "seq", "s", 0, "page sequence number to inspect")
	return cmd
}
