package runtime

import "github.com/aretw0/novella/pkg/domain"

// ApplyAction writes the choice's state mutation into state, which is modified in place.
// An action without a value sets its key to true.
func ApplyAction(choice domain.Choice, state domain.PlayerState) domain.PlayerState {
	if state == nil {
		state = make(domain.PlayerState)
	}
	if choice.Action == nil || choice.Action.SetState == "" {
		return state
	}

	var value any = true
	if choice.Action.Value != nil {
		value = choice.Action.Value
	}
	state[choice.Action.SetState] = value
	return state
}
