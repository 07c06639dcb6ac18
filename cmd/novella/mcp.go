package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/novella/pkg/adapters/mcp"
	"github.com/aretw0/novella/pkg/adapters/memory"
	"github.com/aretw0/novella/pkg/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [content-dir]",
	Short: "Serve the story to AI agents over MCP (stdio)",
	Long: `Runs a Model Context Protocol server on stdin/stdout.
Logs go to stderr so they never corrupt the protocol stream.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(contentDir(args))
		if err != nil {
			return err
		}
		sessions := session.NewManager(memory.NewStore(), session.WithLogger(appLogger))

		appLogger.Info("Starting MCP server (stdio)", "locales", engine.Locales())
		return mcp.NewServer(engine, sessions, appLogger).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
