package sdk

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

var (
	// ErrNoRootAuthorized is returned when an operation is executed before
	// any root has been authorized for its wallet.
	ErrNoRootAuthorized = errors.New("no root authorized for wallet")

	// ErrUnsortedSignatures is returned when root signatures are not in
	// strictly ascending signer order. Sorting makes duplicate signers
	// detectable without extra bookkeeping.
	ErrUnsortedSignatures = errors.New("signatures must be sorted by signer address")
)

// InvalidChainIDError is returned when a chain selector has no known chain.
type InvalidChainIDError struct {
	ReceivedChainID types.ChainSelector
}

// NewInvalidChainIDError creates a new InvalidChainIDError.
func NewInvalidChainIDError(sel types.ChainSelector) *InvalidChainIDError {
	return &InvalidChainIDError{ReceivedChainID: sel}
}

func (e *InvalidChainIDError) Error() string {
	return fmt.Sprintf("invalid chain ID: %d", e.ReceivedChainID)
}

// InvalidTimelockActionError is returned when a timelock proposal carries an
// action the converter cannot encode.
type InvalidTimelockActionError struct {
	Action string
}

// NewInvalidTimelockActionError creates a new InvalidTimelockActionError.
func NewInvalidTimelockActionError(action string) *InvalidTimelockActionError {
	return &InvalidTimelockActionError{Action: action}
}

func (e *InvalidTimelockActionError) Error() string {
	return fmt.Sprintf("invalid timelock action: %s", e.Action)
}

// InvalidProofError is returned when a Merkle proof does not connect a leaf
// to the expected root.
type InvalidProofError struct {
	Leaf common.Hash
	Root common.Hash
}

// NewInvalidProofError creates a new InvalidProofError.
func NewInvalidProofError(leaf, root common.Hash) *InvalidProofError {
	return &InvalidProofError{Leaf: leaf, Root: root}
}

func (e *InvalidProofError) Error() string {
	return fmt.Sprintf("proof does not bind leaf %s to root %s", e.Leaf, e.Root)
}

// RootExpiredError is returned when a root's validUntil lies in the chain's
// past.
type RootExpiredError struct {
	ValidUntil uint32
	Now        uint64
}

// NewRootExpiredError creates a new RootExpiredError.
func NewRootExpiredError(validUntil uint32, now uint64) *RootExpiredError {
	return &RootExpiredError{ValidUntil: validUntil, Now: now}
}

func (e *RootExpiredError) Error() string {
	return fmt.Sprintf("root expired: valid until %d, chain time %d", e.ValidUntil, e.Now)
}

// InvalidSignerError is returned when a root signature recovers to an address
// that is not a wallet owner.
type InvalidSignerError struct {
	Signer common.Address
}

// NewInvalidSignerError creates a new InvalidSignerError.
func NewInvalidSignerError(signer common.Address) *InvalidSignerError {
	return &InvalidSignerError{Signer: signer}
}

func (e *InvalidSignerError) Error() string {
	return fmt.Sprintf("signer %s is not a wallet owner", e.Signer)
}

// QuorumNotMetError is returned when a root carries fewer owner signatures
// than the wallet threshold.
type QuorumNotMetError struct {
	Signers   int
	Threshold uint8
}

// NewQuorumNotMetError creates a new QuorumNotMetError.
func NewQuorumNotMetError(signers int, threshold uint8) *QuorumNotMetError {
	return &QuorumNotMetError{Signers: signers, Threshold: threshold}
}

func (e *QuorumNotMetError) Error() string {
	return fmt.Sprintf("quorum not met: %d owner signatures, threshold %d", e.Signers, e.Threshold)
}

// NonceMismatchError is returned when an operation's nonce does not line up
// with the wallet's transaction count, e.g. after an out of band proposal.
type NonceMismatchError struct {
	OpNonce uint64
	OpCount uint64
}

// NewNonceMismatchError creates a new NonceMismatchError.
func NewNonceMismatchError(opNonce, opCount uint64) *NonceMismatchError {
	return &NonceMismatchError{OpNonce: opNonce, OpCount: opCount}
}

func (e *NonceMismatchError) Error() string {
	return fmt.Sprintf("operation nonce %d does not match wallet op count %d", e.OpNonce, e.OpCount)
}

// ExecutionFailedError is returned when the wallet accepted a transaction but
// its inner call reverted.
type ExecutionFailedError struct {
	TxID   uint64
	Reason string
}

// NewExecutionFailedError creates a new ExecutionFailedError.
func NewExecutionFailedError(txID uint64, reason string) *ExecutionFailedError {
	return &ExecutionFailedError{TxID: txID, Reason: reason}
}

func (e *ExecutionFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("wallet transaction %d failed", e.TxID)
	}

	return fmt.Sprintf("wallet transaction %d failed: %s", e.TxID, e.Reason)
}
