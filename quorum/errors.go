package quorum

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoOwners is returned when constructing a wallet without owners.
	ErrNoOwners = errors.New("wallet requires at least one owner")

	// ErrZeroOwner is returned when an owner is the zero address.
	ErrZeroOwner = errors.New("owner cannot be the zero address")
)

// DuplicateOwnerError is returned when the owner set contains a repeat.
type DuplicateOwnerError struct {
	Owner common.Address
}

// NewDuplicateOwnerError creates a new DuplicateOwnerError.
func NewDuplicateOwnerError(owner common.Address) *DuplicateOwnerError {
	return &DuplicateOwnerError{Owner: owner}
}

func (e *DuplicateOwnerError) Error() string {
	return fmt.Sprintf("duplicate owner %s", e.Owner)
}

// InvalidThresholdError is returned when the approval threshold does not fit
// the owner set.
type InvalidThresholdError struct {
	Threshold uint8
	Owners    int
}

// NewInvalidThresholdError creates a new InvalidThresholdError.
func NewInvalidThresholdError(threshold uint8, owners int) *InvalidThresholdError {
	return &InvalidThresholdError{Threshold: threshold, Owners: owners}
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("threshold %d is invalid for %d owners", e.Threshold, e.Owners)
}

// NotOwnerError is returned when a non-owner calls an owner-gated method.
type NotOwnerError struct {
	Account common.Address
}

// NewNotOwnerError creates a new NotOwnerError.
func NewNotOwnerError(account common.Address) *NotOwnerError {
	return &NotOwnerError{Account: account}
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("account %s is not an owner", e.Account)
}

// TransactionNotFoundError is returned when a transaction id does not exist.
type TransactionNotFoundError struct {
	ID uint64
}

// NewTransactionNotFoundError creates a new TransactionNotFoundError.
func NewTransactionNotFoundError(id uint64) *TransactionNotFoundError {
	return &TransactionNotFoundError{ID: id}
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %d not found", e.ID)
}

// AlreadyApprovedError is returned when an owner approves the same
// transaction twice.
type AlreadyApprovedError struct {
	ID    uint64
	Owner common.Address
}

// NewAlreadyApprovedError creates a new AlreadyApprovedError.
func NewAlreadyApprovedError(id uint64, owner common.Address) *AlreadyApprovedError {
	return &AlreadyApprovedError{ID: id, Owner: owner}
}

func (e *AlreadyApprovedError) Error() string {
	return fmt.Sprintf("transaction %d already approved by %s", e.ID, e.Owner)
}

// AlreadyExecutedError is returned when acting on an executed transaction.
type AlreadyExecutedError struct {
	ID uint64
}

// NewAlreadyExecutedError creates a new AlreadyExecutedError.
func NewAlreadyExecutedError(id uint64) *AlreadyExecutedError {
	return &AlreadyExecutedError{ID: id}
}

func (e *AlreadyExecutedError) Error() string {
	return fmt.Sprintf("transaction %d already executed", e.ID)
}

// ThresholdNotMetError is returned when executing a transaction with too few
// approvals.
type ThresholdNotMetError struct {
	ID        uint64
	Approvals int
	Threshold uint8
}

// NewThresholdNotMetError creates a new ThresholdNotMetError.
func NewThresholdNotMetError(id uint64, approvals int, threshold uint8) *ThresholdNotMetError {
	return &ThresholdNotMetError{ID: id, Approvals: approvals, Threshold: threshold}
}

func (e *ThresholdNotMetError) Error() string {
	return fmt.Sprintf("transaction %d has %d of %d required approvals", e.ID, e.Approvals, e.Threshold)
}
