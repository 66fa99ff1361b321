package bastion

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

// OperationNotReadyError is returned when a scheduled operation has not yet
// cleared its delay.
type OperationNotReadyError struct {
	OpIndex int
}

// Error implements the error interface.
func (e *OperationNotReadyError) Error() string {
	return fmt.Sprintf("operation %d is not ready", e.OpIndex)
}

// NewOperationNotReadyError creates a new OperationNotReadyError.
func NewOperationNotReadyError(opIndex int) *OperationNotReadyError {
	return &OperationNotReadyError{OpIndex: opIndex}
}

// InvalidProposalKindError is returned when a proposal carries a kind other
// than the one its type requires.
type InvalidProposalKindError struct {
	ProvidedKind types.ProposalKind
	AcceptedKind types.ProposalKind
}

func (e *InvalidProposalKindError) Error() string {
	return fmt.Sprintf("invalid proposal kind: %s, value accepted is %s", e.ProvidedKind, e.AcceptedKind)
}

func NewInvalidProposalKindError(provided, accepted types.ProposalKind) *InvalidProposalKindError {
	return &InvalidProposalKindError{ProvidedKind: provided, AcceptedKind: accepted}
}

// ChainMetadataNotFoundError is returned when the chain metadata for a chain
// is not found in a proposal.
type ChainMetadataNotFoundError struct {
	ChainSelector types.ChainSelector
}

// NewChainMetadataNotFoundError creates a new ChainMetadataNotFoundError.
func NewChainMetadataNotFoundError(sel types.ChainSelector) *ChainMetadataNotFoundError {
	return &ChainMetadataNotFoundError{ChainSelector: sel}
}

func (e *ChainMetadataNotFoundError) Error() string {
	return fmt.Sprintf("missing metadata for chain %d", e.ChainSelector)
}

// TimelockAddressNotFoundError is returned when a timelock proposal targets a
// chain it has no delay queue address for.
type TimelockAddressNotFoundError struct {
	ChainSelector types.ChainSelector
}

// NewTimelockAddressNotFoundError creates a new TimelockAddressNotFoundError.
func NewTimelockAddressNotFoundError(sel types.ChainSelector) *TimelockAddressNotFoundError {
	return &TimelockAddressNotFoundError{ChainSelector: sel}
}

func (e *TimelockAddressNotFoundError) Error() string {
	return fmt.Sprintf("missing timelock address for chain %d", e.ChainSelector)
}

// InconsistentConfigsError is returned when the configs for two chains are
// not equal to each other.
type InconsistentConfigsError struct {
	ChainSelectorA types.ChainSelector
	ChainSelectorB types.ChainSelector
}

// NewInconsistentConfigsError creates a new InconsistentConfigsError.
func NewInconsistentConfigsError(selA, selB types.ChainSelector) *InconsistentConfigsError {
	return &InconsistentConfigsError{ChainSelectorA: selA, ChainSelectorB: selB}
}

func (e *InconsistentConfigsError) Error() string {
	return fmt.Sprintf("inconsistent configs for chains %d and %d", e.ChainSelectorA, e.ChainSelectorB)
}

// QuorumNotReachedError is returned when the proposal's signatures do not
// reach the quorum of a chain's wallet configuration.
type QuorumNotReachedError struct {
	ChainSelector types.ChainSelector
}

// NewQuorumNotReachedError creates a new QuorumNotReachedError.
func NewQuorumNotReachedError(sel types.ChainSelector) *QuorumNotReachedError {
	return &QuorumNotReachedError{ChainSelector: sel}
}

func (e *QuorumNotReachedError) Error() string {
	return fmt.Sprintf("quorum not reached for chain %d", e.ChainSelector)
}

type InvalidValidUntilError struct {
	ReceivedValidUntil uint32
}

func (e *InvalidValidUntilError) Error() string {
	return fmt.Sprintf("invalid valid until: %v", e.ReceivedValidUntil)
}

func NewInvalidValidUntilError(receivedValidUntil uint32) *InvalidValidUntilError {
	return &InvalidValidUntilError{ReceivedValidUntil: receivedValidUntil}
}

// InvalidSignatureError is returned when a proposal signature recovers to an
// address outside the wallet's owner set.
type InvalidSignatureError struct {
	RecoveredAddress common.Address
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature: received signature for address %s is not a valid signer for the proposal", e.RecoveredAddress)
}

func NewInvalidSignatureError(recoveredAddress common.Address) *InvalidSignatureError {
	return &InvalidSignatureError{RecoveredAddress: recoveredAddress}
}
