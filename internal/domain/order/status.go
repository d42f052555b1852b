// internal/domain/order/status.go
package order

// statusTransitions is the order lifecycle table. An order moves
// forward through pending, confirmed, paid, processing, shipped and
// completed; cancelled and refunded are reachable from every state
// before completion. Completed and the terminal states accept nothing.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusPaid, StatusProcessing, StatusCancelled, StatusRefunded},
	StatusConfirmed:  {StatusPaid, StatusProcessing, StatusCancelled, StatusRefunded},
	StatusPaid:       {StatusProcessing, StatusCancelled, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusCompleted, StatusCancelled, StatusRefunded},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// activeStatuses are the states holding reserved stock. Entering
// cancelled or refunded from one of these restores inventory.
var activeStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusPaid,
	StatusProcessing,
	StatusShipped,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another under the lifecycle table.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsActiveStatus reports whether the status still holds stock.
func IsActiveStatus(s string) bool {
	for _, a := range activeStatuses {
		if a == s {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status accepts no transitions.
func IsTerminalStatus(s string) bool {
	return len(statusTransitions[s]) == 0 && ValidStatus(s)
}
