package timelock

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MissingRoleError is returned when the caller lacks the role a method
// requires.
type MissingRoleError struct {
	Role    common.Hash
	Account common.Address
}

// NewMissingRoleError creates a new MissingRoleError.
func NewMissingRoleError(role common.Hash, account common.Address) *MissingRoleError {
	return &MissingRoleError{Role: role, Account: account}
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("account %s is missing role %s", e.Account, RoleName(e.Role))
}

// UnauthorizedCallerError is returned when a method reserved for the
// controller itself is called from any other address.
type UnauthorizedCallerError struct {
	Caller common.Address
}

// NewUnauthorizedCallerError creates a new UnauthorizedCallerError.
func NewUnauthorizedCallerError(caller common.Address) *UnauthorizedCallerError {
	return &UnauthorizedCallerError{Caller: caller}
}

func (e *UnauthorizedCallerError) Error() string {
	return fmt.Sprintf("caller %s is not the timelock itself", e.Caller)
}

// InvalidDelayError is returned when a delay does not fit the controller's
// clock.
type InvalidDelayError struct {
	Delay *big.Int
}

// NewInvalidDelayError creates a new InvalidDelayError.
func NewInvalidDelayError(delay *big.Int) *InvalidDelayError {
	return &InvalidDelayError{Delay: delay}
}

func (e *InvalidDelayError) Error() string {
	return fmt.Sprintf("delay %s does not fit the chain clock", e.Delay)
}

// MinDelayNotMetError is returned when a schedule request carries a delay
// below the configured minimum.
type MinDelayNotMetError struct {
	Delay    uint64
	MinDelay uint64
}

// NewMinDelayNotMetError creates a new MinDelayNotMetError.
func NewMinDelayNotMetError(delay, minDelay uint64) *MinDelayNotMetError {
	return &MinDelayNotMetError{Delay: delay, MinDelay: minDelay}
}

func (e *MinDelayNotMetError) Error() string {
	return fmt.Sprintf("delay %d is below the minimum delay %d", e.Delay, e.MinDelay)
}

// OperationAlreadyScheduledError is returned when scheduling an operation
// whose id already has a timestamp.
type OperationAlreadyScheduledError struct {
	ID common.Hash
}

// NewOperationAlreadyScheduledError creates a new OperationAlreadyScheduledError.
func NewOperationAlreadyScheduledError(id common.Hash) *OperationAlreadyScheduledError {
	return &OperationAlreadyScheduledError{ID: id}
}

func (e *OperationAlreadyScheduledError) Error() string {
	return fmt.Sprintf("operation %s is already scheduled", e.ID)
}

// OperationNotReadyError is returned when executing an operation that is
// unknown, still waiting out its delay, or already done.
type OperationNotReadyError struct {
	ID common.Hash
}

// NewOperationNotReadyError creates a new OperationNotReadyError.
func NewOperationNotReadyError(id common.Hash) *OperationNotReadyError {
	return &OperationNotReadyError{ID: id}
}

func (e *OperationNotReadyError) Error() string {
	return fmt.Sprintf("operation %s is not ready", e.ID)
}

// PredecessorNotDoneError is returned when executing an operation whose
// predecessor has not executed.
type PredecessorNotDoneError struct {
	ID          common.Hash
	Predecessor common.Hash
}

// NewPredecessorNotDoneError creates a new PredecessorNotDoneError.
func NewPredecessorNotDoneError(id, predecessor common.Hash) *PredecessorNotDoneError {
	return &PredecessorNotDoneError{ID: id, Predecessor: predecessor}
}

func (e *PredecessorNotDoneError) Error() string {
	return fmt.Sprintf("operation %s predecessor %s is not done", e.ID, e.Predecessor)
}

// OperationNotPendingError is returned when cancelling an operation that is
// not pending.
type OperationNotPendingError struct {
	ID common.Hash
}

// NewOperationNotPendingError creates a new OperationNotPendingError.
func NewOperationNotPendingError(id common.Hash) *OperationNotPendingError {
	return &OperationNotPendingError{ID: id}
}

func (e *OperationNotPendingError) Error() string {
	return fmt.Sprintf("operation %s is not pending", e.ID)
}

// InnerCallFailedError is returned when a ready operation's underlying call
// reverts. The whole execute transaction reverts with it.
type InnerCallFailedError struct {
	ID  common.Hash
	Err error
}

// NewInnerCallFailedError creates a new InnerCallFailedError.
func NewInnerCallFailedError(id common.Hash, err error) *InnerCallFailedError {
	return &InnerCallFailedError{ID: id, Err: err}
}

func (e *InnerCallFailedError) Error() string {
	return fmt.Sprintf("operation %s underlying call failed: %v", e.ID, e.Err)
}

func (e *InnerCallFailedError) Unwrap() error {
	return e.Err
}
