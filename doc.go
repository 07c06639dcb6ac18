/*
Package novella is a server-driven narrative engine for branching, localized stories.

A story is a directed graph of nodes per locale. Each node carries text, optional
artwork, choices gated by player state, and optional quiz prompts whose questions can
be generated on the fly. The engine keeps no per-player state: every operation takes
a *domain.Session and returns an updated copy, so hosts (HTTP, MCP, terminal) decide
where sessions live.

# Usage

	eng, err := novella.New("./content/vn-story")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, node, err := eng.Start(ctx, "Ada", "en-US")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(node.Text)

	// Pick the first visible choice.
	sess, node, err = eng.Choose(ctx, sess, node.ID, 0)

Content can also be provided in memory with WithLoader and pkg/adapters/memory.
*/
package novella
