package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/novella/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write an audit line per engine event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("node_enter", "locale", e.Locale, "node_id", e.NodeID)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.Info("choice",
				"locale", e.Locale,
				"from_node_id", e.FromNodeID,
				"to_node_id", e.ToNodeID,
				"choice_index", e.ChoiceIndex,
				"set_state", e.SetState,
			)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.Info("answer", "locale", e.Locale, "node_id", e.NodeID, "correct", e.Correct, "to_node_id", e.ToNodeID)
		},
		OnBack: func(ctx context.Context, e *domain.BackEvent) {
			logger.Info("back", "locale", e.Locale, "from_node_id", e.FromNodeID, "to_node_id", e.ToNodeID)
		},
	}
}
