package main

import (
	"github.com/spf13/cobra"

	"github.com/tidalware/qpage/broadcast"
)

func newPushCmd() *cobra.Command {
	var dir string
	var startSeq uint64

	cmd := &cobra.Command{
		Use:   "push <message>",
		Short: "Append a message to a broadcast channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := broadcast.Open(dir, broadcast.DefaultConfig)
			if err != nil {
				return err
			}

			prod, err := ch.NewProducer(startSeq)
			if err != nil {
				return err
			}
			defer prod.Close()

			seq, err := prod.Push([]byte(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("pushed to page %d\n", seq)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "channel directory")
	cmd.Flags().Uint64VarP(&startSeq, "seq", "s", 0, "page sequence number to start from")
	return cmd
}
