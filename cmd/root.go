package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var (
	cfgFile string
	verbose bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slotsnipe",
		Short: "Reservation racer + availability monitor for timed slot releases",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./slotsnipe.yaml)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newCredsCmd())
	root.AddCommand(newRaceCmd())
	root.AddCommand(newMonitorCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newHistoryCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
