// Command housecup runs the house points ledger from the command line and
// serves its standings over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "housecup",
		Short:         "House points ledger",
		Long:          "housecup tracks member and house points for community games and keeps them in a JSON file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newBalanceCommand(),
		newAwardCommand(),
		newActivityCommand(),
		newResetCommand(),
		newStandingsCommand(),
		newServeCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "housecup:", err)
		os.Exit(1)
	}
}
