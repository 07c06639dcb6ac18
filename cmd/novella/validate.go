package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content-dir]",
	Short: "Validate the story graph",
	Long:  "Loads every locale and checks links, generators and the start node. Warnings do not fail validation.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(contentDir(args))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range engine.Warnings() {
			fmt.Fprintf(out, "⚠️  %s\n", w)
		}
		fmt.Fprintf(out, "Story is valid! ✅ (%d locales: %v)\n", len(engine.Locales()), engine.Locales())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
