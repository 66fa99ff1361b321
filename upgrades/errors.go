package upgrades

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrZeroNewOwner is returned when ownership is nominated to the zero
	// address.
	ErrZeroNewOwner = errors.New("new owner cannot be the zero address")

	// ErrZeroNewAdmin is returned when a proxy admin change targets the zero
	// address.
	ErrZeroNewAdmin = errors.New("new admin cannot be the zero address")

	// ErrAdminFallthrough is returned when the proxy admin sends calldata
	// outside the admin surface. The admin never reaches the implementation.
	ErrAdminFallthrough = errors.New("proxy admin cannot call the implementation")

	// ErrDirectLogicCall is returned when standalone logic is called outside a
	// proxy.
	ErrDirectLogicCall = errors.New("logic must be called through a proxy")
)

// NotOwnerError is returned when a non-owner calls an owner-gated method.
type NotOwnerError struct {
	Account common.Address
}

// NewNotOwnerError creates a new NotOwnerError.
func NewNotOwnerError(account common.Address) *NotOwnerError {
	return &NotOwnerError{Account: account}
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("account %s is not the owner", e.Account)
}

// NotPendingOwnerError is returned when acceptOwnership is called by anyone
// but the nominated owner.
type NotPendingOwnerError struct {
	Account common.Address
}

// NewNotPendingOwnerError creates a new NotPendingOwnerError.
func NewNotPendingOwnerError(account common.Address) *NotPendingOwnerError {
	return &NotPendingOwnerError{Account: account}
}

func (e *NotPendingOwnerError) Error() string {
	return fmt.Sprintf("account %s is not the pending owner", e.Account)
}

// NotAnImplementationError is returned when an upgrade targets an address
// that hosts no implementation logic.
type NotAnImplementationError struct {
	Address common.Address
}

// NewNotAnImplementationError creates a new NotAnImplementationError.
func NewNotAnImplementationError(address common.Address) *NotAnImplementationError {
	return &NotAnImplementationError{Address: address}
}

func (e *NotAnImplementationError) Error() string {
	return fmt.Sprintf("no implementation logic at %s", e.Address)
}

// InvalidDelayError is returned when an upgrade delay does not fit the chain
// clock.
type InvalidDelayError struct {
	Delay *big.Int
}

// NewInvalidDelayError creates a new InvalidDelayError.
func NewInvalidDelayError(delay *big.Int) *InvalidDelayError {
	return &InvalidDelayError{Delay: delay}
}

func (e *InvalidDelayError) Error() string {
	return fmt.Sprintf("upgrade delay %s does not fit the chain clock", e.Delay)
}

// UpgradeAlreadyScheduledError is returned when scheduling an upgrade whose
// id is already known.
type UpgradeAlreadyScheduledError struct {
	ID common.Hash
}

// NewUpgradeAlreadyScheduledError creates a new UpgradeAlreadyScheduledError.
func NewUpgradeAlreadyScheduledError(id common.Hash) *UpgradeAlreadyScheduledError {
	return &UpgradeAlreadyScheduledError{ID: id}
}

func (e *UpgradeAlreadyScheduledError) Error() string {
	return fmt.Sprintf("upgrade %s is already scheduled", e.ID)
}

// UpgradeNotReadyError is returned when executing an upgrade that is unknown
// or whose delay has not elapsed.
type UpgradeNotReadyError struct {
	ID common.Hash
}

// NewUpgradeNotReadyError creates a new UpgradeNotReadyError.
func NewUpgradeNotReadyError(id common.Hash) *UpgradeNotReadyError {
	return &UpgradeNotReadyError{ID: id}
}

func (e *UpgradeNotReadyError) Error() string {
	return fmt.Sprintf("upgrade %s is not ready", e.ID)
}

// UpgradeAlreadyDoneError is returned when re-executing a completed upgrade.
type UpgradeAlreadyDoneError struct {
	ID common.Hash
}

// NewUpgradeAlreadyDoneError creates a new UpgradeAlreadyDoneError.
func NewUpgradeAlreadyDoneError(id common.Hash) *UpgradeAlreadyDoneError {
	return &UpgradeAlreadyDoneError{ID: id}
}

func (e *UpgradeAlreadyDoneError) Error() string {
	return fmt.Sprintf("upgrade %s is already done", e.ID)
}

// UpgradeNotPendingError is returned when cancelling an upgrade that is not
// waiting for execution.
type UpgradeNotPendingError struct {
	ID common.Hash
}

// NewUpgradeNotPendingError creates a new UpgradeNotPendingError.
func NewUpgradeNotPendingError(id common.Hash) *UpgradeNotPendingError {
	return &UpgradeNotPendingError{ID: id}
}

func (e *UpgradeNotPendingError) Error() string {
	return fmt.Sprintf("upgrade %s is not pending", e.ID)
}
