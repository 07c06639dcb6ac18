package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage saved terminal sessions",
}

var sessionListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := localStore()
		if err != nil {
			return err
		}
		ids, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Show a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := localStore()
		if err != nil {
			return err
		}
		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", args[0], err)
		}
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:     "rm [session-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := localStore()
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete session %q: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionListCmd, sessionInspectCmd, sessionRemoveCmd)
	rootCmd.AddCommand(sessionCmd)
}
