package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrZeroAdmin is returned when initializing with no admin.
	ErrZeroAdmin = errors.New("admin must not be the zero address")

	// ErrZeroGovernance is returned when linking the zero address as L1
	// governance.
	ErrZeroGovernance = errors.New("l1 governance must not be the zero address")

	// ErrZeroTreasury is returned when pointing the treasury at the zero
	// address.
	ErrZeroTreasury = errors.New("treasury must not be the zero address")
)

// AlreadyInitializedError is returned when initialize runs on a controller
// that already has a version.
type AlreadyInitializedError struct {
	Version uint8
}

// NewAlreadyInitializedError creates a new AlreadyInitializedError.
func NewAlreadyInitializedError(version uint8) *AlreadyInitializedError {
	return &AlreadyInitializedError{Version: version}
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("controller is already initialized at version %d", e.Version)
}

// InvalidVersionError is returned when a versioned initializer runs against
// the wrong storage version.
type InvalidVersionError struct {
	Have uint8
	Want uint8
}

// NewInvalidVersionError creates a new InvalidVersionError.
func NewInvalidVersionError(have, want uint8) *InvalidVersionError {
	return &InvalidVersionError{Have: have, Want: want}
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("controller is at version %d, initializer requires version %d", e.Have, e.Want)
}

// GovernanceAlreadyLinkedError is returned when setL1Governance runs a second
// time; the link is write-once.
type GovernanceAlreadyLinkedError struct {
	Current common.Address
}

// NewGovernanceAlreadyLinkedError creates a new GovernanceAlreadyLinkedError.
func NewGovernanceAlreadyLinkedError(current common.Address) *GovernanceAlreadyLinkedError {
	return &GovernanceAlreadyLinkedError{Current: current}
}

func (e *GovernanceAlreadyLinkedError) Error() string {
	return fmt.Sprintf("l1 governance is already linked to %s", e.Current)
}

// NotAuthorizedError is returned when a mutating call arrives neither from
// the aliased governance nor from a holder of the required role.
type NotAuthorizedError struct {
	Account common.Address
}

// NewNotAuthorizedError creates a new NotAuthorizedError.
func NewNotAuthorizedError(account common.Address) *NotAuthorizedError {
	return &NotAuthorizedError{Account: account}
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("account %s is not authorized", e.Account)
}

// InvalidFeeBpsError is returned when the fee parameter exceeds 100%.
type InvalidFeeBpsError struct {
	FeeBps uint16
}

// NewInvalidFeeBpsError creates a new InvalidFeeBpsError.
func NewInvalidFeeBpsError(feeBps uint16) *InvalidFeeBpsError {
	return &InvalidFeeBpsError{FeeBps: feeBps}
}

func (e *InvalidFeeBpsError) Error() string {
	return fmt.Sprintf("fee of %d bps exceeds the maximum of %d", e.FeeBps, MaxFeeBps)
}
