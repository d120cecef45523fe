package orders

import "fmt"

// InvalidStatusTransitionError rejects a fulfillment transition the machine
// does not allow.
type InvalidStatusTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// CanTransition encodes the fulfillment machine:
// Processing -> Shipped -> Delivered, with Cancelled reachable from
// Processing or Shipped. Delivered and Cancelled are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusProcessing:
		return to == StatusShipped || to == StatusCancelled
	case StatusShipped:
		return to == StatusDelivered || to == StatusCancelled
	default:
		return false
	}
}
