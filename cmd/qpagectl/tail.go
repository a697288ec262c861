package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tidalware/qpage"
	"github.com/tidalware/qpage/broadcast"
)

func newTailCmd() *cobra.Command {
	var dir string
	var startSeq uint64
	var startOffset int
	var follow bool

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Read messages from a broadcast channel starting at a cursor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := broadcast.Open(dir, broadcast.DefaultConfig)
			if err != nil {
				return err
			}

			cons, err := ch.NewConsumer(startSeq, startOffset)
			if err != nil {
				return err
			}
			defer cons.Close()

			for {
				msg, status, err := cons.Next(nil)
				if err != nil {
					return err
				}
				switch status {
				case qpage.StatusOK:
					cmd.Println(string(msg))
				case qpage.StatusEmpty:
					if !follow {
						return nil
					}
					time.Sleep(50 * time.Millisecond)
				case qpage.StatusTimeout:
					// unreachable with a nil spin func, kept for completeness
				}
			}
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "channel directory")
	cmd.Flags().Uint64VarP(&startSeq, "seq", "s", 0, "page sequence number to start from")
	cmd.Flags().IntVarP(&startOffset, "offset", "o", 0, "byte offset within the starting page")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling for new messages instead of exiting at EMPTY")
	return cmd
}
