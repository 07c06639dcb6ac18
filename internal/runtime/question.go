package runtime

import (
	"strings"

	"github.com/aretw0/novella/pkg/domain"
)

// activateQuestion arms the session's expected answer for quiz nodes.
// Generated questions also replace the placeholder in the node text.
// An unknown generator is logged and leaves the node and session untouched.
func (e *Engine) activateQuestion(node *domain.Node, s *domain.Session) {
	prompt := node.InputPrompt
	if prompt == nil {
		return
	}

	switch {
	case prompt.Function != "":
		q, err := e.questions.Generate(prompt.Function)
		if err != nil {
			e.logger.Warn("Question generation skipped", "node_id", node.ID, "function", prompt.Function, "err", err)
			return
		}
		answer := strings.ToLower(q.Answer)
		s.PendingAnswer = &answer
		node.Text = strings.ReplaceAll(node.Text, domain.QuestionPlaceholder, q.Prompt)
	case prompt.Answer != "":
		answer := strings.ToLower(strings.TrimSpace(prompt.Answer))
		s.PendingAnswer = &answer
	}
}

// normalizeAnswer applies the same normalization to every submitted answer.
func normalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
