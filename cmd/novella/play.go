package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/novella"
	"github.com/aretw0/novella/internal/presentation/tui"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/sanitize"
)

const defaultWidth = 80

var playCmd = &cobra.Command{
	Use:   "play [content-dir]",
	Short: "Play the story in the terminal",
	Long: `Plays the story interactively. Type a choice number, "back" or "quit".
Progress is saved after every step; pass --session to resume it later.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("name", "", "Player name used in the story text")
	playCmd.Flags().String("locale", "", "Story locale (default: the configured default)")
	playCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	playCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rawName, _ := cmd.Flags().GetString("name")
	locale, _ := cmd.Flags().GetString("locale")
	sessionID, _ := cmd.Flags().GetString("session")
	plain, _ := cmd.Flags().GetBool("plain")

	name, err := sanitize.Name(rawName)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	engine, err := buildEngine(contentDir(args))
	if err != nil {
		return err
	}
	store, err := localStore()
	if err != nil {
		return err
	}

	var sess *domain.Session
	if sessionID != "" {
		sess, err = store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
	} else {
		sessionID = uuid.NewString()
	}
	if sess == nil {
		if sess, _, err = engine.Start(ctx, name, locale); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	runner := novella.NewRunner()
	runner.Input = cmd.InOrStdin()
	runner.Output = out
	runner.Width = defaultWidth
	runner.OnStep = func(s *domain.Session) error {
		return store.Save(ctx, sessionID, s)
	}

	if fd := int(os.Stdout.Fd()); !plain && out == os.Stdout && term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			runner.Width = w
		}
		if render, err := tui.NewRenderer(runner.Width, ""); err == nil {
			runner.Renderer = render
		}
		tui.PrintBanner(out)
	}

	if _, err := runner.Run(ctx, engine, sess); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSession saved. Resume with: novella play --session %s\n", sessionID)
	return nil
}
