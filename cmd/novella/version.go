package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/novella"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of novella",
	// Skip configuration so version always works.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "novella version %s\n", novella.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
