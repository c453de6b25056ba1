package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "psykal",
		Short: "PSy-layer generator for finite-element kernel codes",
		Long: `psykal reads kernel metadata and algorithm-layer invoke descriptions and
synthesizes the parallel-execution driver (PSy) layer: iteration loops,
argument marshalling, halo exchanges, and reduction steps.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
