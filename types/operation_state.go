package types

// OperationState describes where a delayed operation sits in its lifecycle.
// Both delay clocks (the delay queue and the upgrade authorizer) derive it
// from a single stored timestamp: zero means unknown, the done sentinel means
// executed, anything else is scheduled and becomes ready once the chain clock
// reaches it.
type OperationState uint8

const (
	OperationStateUnknown OperationState = iota
	OperationStateScheduled
	OperationStateReady
	OperationStateDone
)

// String returns the human readable name of the state.
func (s OperationState) String() string {
	switch s {
	case OperationStateScheduled:
		return "scheduled"
	case OperationStateReady:
		return "ready"
	case OperationStateDone:
		return "done"
	case OperationStateUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}
