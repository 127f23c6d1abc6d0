package settlement

import (
	"fmt"

	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
)

// validTransitions is the complete escrow state machine. Every mutating
// operation goes through validateTransition before touching the row.
var validTransitions = map[enums.OrderState][]enums.OrderState{
	enums.OrderStateFundsHeld: {enums.OrderStateShipped, enums.OrderStateRefunded},
	enums.OrderStateShipped:   {enums.OrderStateDelivered, enums.OrderStateDisputed, enums.OrderStateRefunded},
	enums.OrderStateDelivered: {enums.OrderStateCompleted, enums.OrderStateDisputed},
	enums.OrderStateDisputed:  {enums.OrderStateCompleted, enums.OrderStateRefunded},
	enums.OrderStateCompleted: {},
	enums.OrderStateRefunded:  {},
}

// CanTransition reports whether from -> to is in the state machine.
func CanTransition(from, to enums.OrderState) bool {
	for _, candidate := range validTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves state.
func IsTerminal(state enums.OrderState) bool {
	next, ok := validTransitions[state]
	return ok && len(next) == 0
}

func validateTransition(from, to enums.OrderState) error {
	if CanTransition(from, to) {
		return nil
	}
	return invalidTransition(from, to)
}

func invalidTransition(from, to enums.OrderState) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", from, to)).
		WithDetails(map[string]any{"from": from, "to": to})
}
