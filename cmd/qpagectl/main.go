// Command qpagectl is a small operational CLI around a broadcast channel:
// push a message, tail messages from the command line, or print a page's
// path and whether its file exists yet.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidalware/qpage/internal/diaglog"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "qpagectl",
	Short:   "Inspect and drive a qpage broadcast channel from the command line",
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			diaglog.SetLevel(diaglog.LevelDebug)
		} else {
			diaglog.SetLevel(diaglog.LevelWarn)
		}
	},
}

func init() {
	diaglog.SetWriter(diaglog.StderrTerminal())
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log page and ring diagnostics to stderr")
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newTailCmd())
	rootCmd.AddCommand(newInspectCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "qpagectl: %v\n", err)
		os.Exit(1)
	}
}
