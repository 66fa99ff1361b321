package types

// TimelockAction selects what a timelock proposal does with its operations.
// There is no bypass: every state change rides out the full delay.
type TimelockAction string

const (
	TimelockActionSchedule TimelockAction = "schedule"
	TimelockActionCancel   TimelockAction = "cancel"
)
