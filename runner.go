package novella

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/muesli/reflow/wordwrap"
)

// Runner plays a session interactively over line-based IO.
// This allows for easy testing and integration with different frontends (terminal, pipes).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// Width wraps plain output at the given column. Zero disables wrapping.
	Width int

	// OnStep is called with the session after every successful move, e.g. to persist it.
	OnStep func(*domain.Session) error
}

// ContentRenderer is a function that transforms node markdown before outputting it.
// This allows for terminal rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run displays the session's current node and loops on player input until the story
// ends, the input is exhausted, or the player quits. It returns the last session.
func (r *Runner) Run(ctx context.Context, engine *Engine, sess *domain.Session) (*domain.Session, error) {
	if r.Input == nil {
		return nil, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	sess, node, err := engine.GetNode(ctx, sess, sess.CurrentNodeID())
	if err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}

	redraw := true
	for {
		if redraw {
			if err := r.step(sess, node); err != nil {
				return sess, err
			}
		}
		redraw = false
		if len(node.Choices) == 0 && node.InputPrompt == nil {
			if !r.Headless {
				fmt.Fprintln(r.Output, "-- The End --")
			}
			return sess, nil
		}

		if !r.Headless {
			if node.InputPrompt != nil {
				fmt.Fprint(r.Output, "answer> ")
			} else {
				fmt.Fprint(r.Output, "> ")
			}
		}
		text, err := lines.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || text == "") {
			if errors.Is(err, io.EOF) {
				return sess, nil
			}
			return sess, fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)

		var next *domain.Session
		var nextNode *domain.Node
		switch {
		case input == "quit" || input == "exit":
			fmt.Fprintln(r.Output, "Bye!")
			return sess, nil
		case input == "back":
			next, nextNode, err = engine.Back(ctx, sess)
		case node.InputPrompt != nil:
			next, nextNode, err = engine.SubmitAnswer(ctx, sess, node.ID, input)
		default:
			n, convErr := strconv.Atoi(input)
			if convErr != nil {
				fmt.Fprintf(r.Output, "Type a choice number between 1 and %d, \"back\" or \"quit\".\n", len(node.Choices))
				continue
			}
			next, nextNode, err = engine.Choose(ctx, sess, node.ID, n-1)
		}

		switch {
		case errors.Is(err, domain.ErrNoHistory):
			fmt.Fprintln(r.Output, "You are at the beginning of the story.")
			continue
		case errors.Is(err, domain.ErrInvalidChoice):
			fmt.Fprintf(r.Output, "No such choice. Pick between 1 and %d.\n", len(node.Choices))
			continue
		case errors.Is(err, domain.ErrNoPendingAnswer):
			fmt.Fprintln(r.Output, "This question is unavailable. Type \"back\" to return.")
			continue
		case err != nil:
			return sess, fmt.Errorf("navigation error: %w", err)
		}
		sess, node, redraw = next, nextNode, true
	}
}

// step prints a node and reports the session to OnStep.
func (r *Runner) step(sess *domain.Session, node *domain.Node) error {
	fmt.Fprintln(r.Output, r.format(node))
	if r.OnStep != nil {
		if err := r.OnStep(sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	return nil
}

func (r *Runner) format(node *domain.Node) string {
	var b strings.Builder
	if node.Character != "" {
		fmt.Fprintf(&b, "**%s**: ", node.Character)
	}
	b.WriteString(node.Text)
	b.WriteString("\n")
	for i, c := range node.Choices {
		fmt.Fprintf(&b, "\n%d. %s", i+1, c.Text)
	}

	text := b.String()
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			return strings.TrimSpace(rendered)
		}
	}
	text = strings.ReplaceAll(text, "**", "")
	if r.Width > 0 {
		text = wordwrap.String(text, r.Width)
	}
	return strings.TrimSpace(text)
}
