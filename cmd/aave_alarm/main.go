package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "aave_alarm",
		Short:        "Aave position tracker and health factor monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (defaults to $CONFIG_PATH)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Compute the position snapshot of one account",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("chain", "ETHEREUM", "chain identifier")
	snapshotCmd.Flags().String("address", "", "account address")
	snapshotCmd.Flags().Int("version", 3, "aave version (2 or 3)")
	snapshotCmd.Flags().String("file", "", "file with one \"CHAIN ADDRESS [VERSION]\" per line")
	snapshotCmd.MarkFlagsMutuallyExclusive("address", "file")
	snapshotCmd.MarkFlagsOneRequired("address", "file")
	root.AddCommand(snapshotCmd)

	marketsCmd := &cobra.Command{
		Use:   "markets",
		Short: "List supported chains and aave versions",
		RunE:  runMarkets,
	}
	root.AddCommand(marketsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
