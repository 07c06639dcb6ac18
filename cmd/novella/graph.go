package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/novella/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [content-dir]",
	Short: "Export the story as a Mermaid flowchart",
	Long: `Prints a Mermaid flowchart of one locale's story.
With --session, the visited path and current node are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locale, _ := cmd.Flags().GetString("locale")
		sessionID, _ := cmd.Flags().GetString("session")

		engine, err := buildEngine(contentDir(args))
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID != "" {
			store, err := localStore()
			if err != nil {
				return err
			}
			sess, err := store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", sessionID, err)
			}
			if locale == "" {
				locale = sess.Locale
			}
			overlay = &graph.Overlay{VisitedNodes: sess.History, CurrentNode: sess.CurrentNodeID()}
		}
		if locale == "" {
			locale = engine.DefaultLocale()
		}

		nodes, err := engine.Inspect(locale)
		if err != nil {
			return fmt.Errorf("no story for locale %q: %w", locale, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateMermaid(nodes, overlay))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("locale", "", "Locale to export (default: the configured default)")
	graphCmd.Flags().StringP("session", "s", "", "Session ID to overlay")
	rootCmd.AddCommand(graphCmd)
}
