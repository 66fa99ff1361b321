package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrCallDepthExceeded is returned when nested sub-calls pass the fabric's
	// depth bound.
	ErrCallDepthExceeded = errors.New("call depth exceeded")

	// ErrNegativeValue is returned when a call or transfer carries a negative
	// native value.
	ErrNegativeValue = errors.New("negative call value")

	// ErrTimeReversed is returned when SetTime would move the chain clock
	// backwards.
	ErrTimeReversed = errors.New("chain time cannot move backwards")
)

// ContractExistsError is returned when registering a contract at an occupied
// address.
type ContractExistsError struct {
	Address common.Address
}

// NewContractExistsError creates a new ContractExistsError.
func NewContractExistsError(addr common.Address) *ContractExistsError {
	return &ContractExistsError{Address: addr}
}

func (e *ContractExistsError) Error() string {
	return fmt.Sprintf("contract already registered at %s", e.Address)
}

// NoCodeError is returned when calldata targets an address with no contract.
// Plain value transfers to such addresses succeed; calls do not.
type NoCodeError struct {
	Address common.Address
}

// NewNoCodeError creates a new NoCodeError.
func NewNoCodeError(addr common.Address) *NoCodeError {
	return &NoCodeError{Address: addr}
}

func (e *NoCodeError) Error() string {
	return fmt.Sprintf("no contract at %s", e.Address)
}

// NotPayableError is returned when value is sent to a contract that rejects
// it.
type NotPayableError struct {
	Address common.Address
}

// NewNotPayableError creates a new NotPayableError.
func NewNotPayableError(addr common.Address) *NotPayableError {
	return &NotPayableError{Address: addr}
}

func (e *NotPayableError) Error() string {
	return fmt.Sprintf("contract at %s does not accept value", e.Address)
}

// UnhandledMethodError is returned when calldata resolves to an ABI method
// the contract's dispatch does not implement.
type UnhandledMethodError struct {
	Method string
}

// NewUnhandledMethodError creates a new UnhandledMethodError.
func NewUnhandledMethodError(method string) *UnhandledMethodError {
	return &UnhandledMethodError{Method: method}
}

func (e *UnhandledMethodError) Error() string {
	return fmt.Sprintf("method %s is not handled", e.Method)
}

// InsufficientBalanceError is returned when a sender cannot cover the value
// of a call or transfer.
type InsufficientBalanceError struct {
	Address common.Address
	Need    *big.Int
	Have    *big.Int
}

// NewInsufficientBalanceError creates a new InsufficientBalanceError.
func NewInsufficientBalanceError(addr common.Address, need, have *big.Int) *InsufficientBalanceError {
	return &InsufficientBalanceError{Address: addr, Need: bigOrZero(need), Have: bigOrZero(have)}
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance at %s: need %s, have %s", e.Address, e.Need, e.Have)
}
