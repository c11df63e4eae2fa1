package orders

import "github.com/angelmondragon/oms-backend/pkg/enums"

var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:   {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered: {},
	enums.OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
// A status never transitions to itself; callers treat that as a no-op.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// restocksOnCancel reports whether cancelling from status returns the reserved units.
func restocksOnCancel(from enums.OrderStatus) bool {
	return from == enums.OrderStatusPending || from == enums.OrderStatusConfirmed
}
