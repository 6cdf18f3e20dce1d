package orders

import (
	"fmt"
	"myFoodHub/domain"
)

// forward is the happy path. Cancellation is handled separately since it is
// reachable from every non-terminal state.
var forward = map[domain.OrderStatus]domain.OrderStatus{
	domain.StatusPending:        domain.StatusAccepted,
	domain.StatusAccepted:       domain.StatusPreparing,
	domain.StatusPreparing:      domain.StatusOutForDelivery,
	domain.StatusOutForDelivery: domain.StatusDelivered,
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another, regardless of who asks.
func CanTransition(from, to domain.OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == domain.StatusCancelled {
		return true
	}
	next, ok := forward[from]
	return ok && next == to
}

// party is how the actor relates to the order.
type party int

const (
	partyNone party = iota
	partyCustomer
	partyOwner
	partyAdmin
)

// authorize checks a lifecycle-valid move against the caller's relation to
// the order. Restaurant owners drive the order forward and may cancel it;
// customers may only cancel while it is still pending.
func authorize(p party, from, to domain.OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	switch p {
	case partyAdmin, partyOwner:
		return nil
	case partyCustomer:
		if to == domain.StatusCancelled && from == domain.StatusPending {
			return nil
		}
		return fmt.Errorf("%w: customers can only cancel pending orders", domain.ErrForbidden)
	}

	return fmt.Errorf("%w: not a party to this order", domain.ErrForbidden)
}
