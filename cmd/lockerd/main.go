package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lockerd",
	Short: "distributed key-value store with quorum-coordinated writes",
	Long: `locker is a small distributed key-value store. Writes are coordinated
through a two-phase, quorum-locked protocol; reads are served dirty from
the local in-memory table. Values carry a lease that must be renewed or
the key is garbage collected.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(extendCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(debugCmd)

	rootCmd.PersistentFlags().String("server", "127.0.0.1:7421", "client address of a cluster node")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
