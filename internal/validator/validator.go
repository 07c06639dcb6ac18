package validator

import (
	"fmt"
	"sort"

	"github.com/aretw0/novella/pkg/domain"
	goerrors "github.com/pixil98/go-errors"
)

// Option configures a validation run.
type Option func(*config)

type config struct {
	knownFunction func(name string) bool
}

// WithGeneratorCheck reports input prompts naming generators the checker does not know.
// Unknown generators degrade gracefully at runtime, so they are warnings, not errors.
func WithGeneratorCheck(known func(name string) bool) Option {
	return func(c *config) {
		c.knownFunction = known
	}
}

// Result holds the outcome of a validation run.
type Result struct {
	// Warnings are suspicious but playable content issues (e.g. unreachable nodes).
	Warnings []string

	err error
}

// Err returns the aggregated authoring defects as a *domain.ContentError, or nil when the content is sound.
func (r *Result) Err() error {
	return r.err
}

// ValidateBundles checks every locale for structural defects and dangling references.
// All defects are collected before returning so authors can fix them in one pass.
func ValidateBundles(bundles map[string]domain.LocaleBundle, opts ...Option) *Result {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	res := &Result{}
	el := goerrors.NewErrorList()

	for _, locale := range sortedLocales(bundles) {
		bundle := bundles[locale]
		if len(bundle.Nodes) == 0 {
			if len(bundle.UIText) > 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: locale has UI text but no story", locale))
			}
			continue
		}

		for _, err := range validateLocale(locale, bundle, cfg, res) {
			el.Add(err)
		}
	}

	if err := el.Err(); err != nil {
		res.err = &domain.ContentError{Err: err}
	}
	return res
}

func validateLocale(locale string, bundle domain.LocaleBundle, cfg *config, res *Result) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s", locale, fmt.Sprintf(format, args...)))
	}

	if _, ok := bundle.Nodes[domain.StartNodeID]; !ok {
		fail("missing %q node", domain.StartNodeID)
	}

	for _, id := range sortedIDs(bundle.Nodes) {
		node := bundle.Nodes[id]
		if node.ID != id {
			fail("node registered as %q declares id %q", id, node.ID)
		}

		for i, choice := range node.Choices {
			switch {
			case choice.NextNode == "":
				fail("node %q choice %d has no next_node", id, i)
			case !exists(bundle, choice.NextNode):
				fail("node %q choice %d points to missing node %q", id, i, choice.NextNode)
			}
			if choice.Requires != nil && choice.Requires.State == "" {
				fail("node %q choice %d requires an empty state key", id, i)
			}
			if choice.Action != nil && choice.Action.SetState == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: node %q choice %d has an action without set_state", locale, id, i))
			}
		}

		if p := node.InputPrompt; p != nil {
			hasFn, hasAnswer := p.Function != "", p.Answer != ""
			if hasFn == hasAnswer {
				fail("node %q input_prompt must set exactly one of function or answer", id)
			}
			for field, target := range map[string]string{"on_correct": p.OnCorrect, "on_incorrect": p.OnIncorrect} {
				switch {
				case target == "":
					fail("node %q input_prompt has no %s", id, field)
				case !exists(bundle, target):
					fail("node %q input_prompt %s points to missing node %q", id, field, target)
				}
			}
			if hasFn && cfg.knownFunction != nil && !cfg.knownFunction(p.Function) {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: node %q uses unknown question generator %q", locale, id, p.Function))
			}
		}
	}

	for _, id := range unreachable(bundle) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: node %q is unreachable from %q", locale, id, domain.StartNodeID))
	}

	return errs
}

// unreachable crawls the graph from the start node and returns the IDs never visited.
func unreachable(bundle domain.LocaleBundle) []string {
	if _, ok := bundle.Nodes[domain.StartNodeID]; !ok {
		return nil
	}

	visited := make(map[string]bool)
	queue := []string{domain.StartNodeID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, ok := bundle.Nodes[currentID]
		if !ok {
			continue
		}
		for _, target := range node.Targets() {
			if target != "" && !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var missed []string
	for _, id := range sortedIDs(bundle.Nodes) {
		if !visited[id] {
			missed = append(missed, id)
		}
	}
	return missed
}

func exists(bundle domain.LocaleBundle, id string) bool {
	_, ok := bundle.Nodes[id]
	return ok
}

func sortedLocales(bundles map[string]domain.LocaleBundle) []string {
	keys := make([]string, 0, len(bundles))
	for k := range bundles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIDs(nodes map[string]domain.Node) []string {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
