package bastion

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

// TimelockExecutable is a schedule proposal whose operations have already
// passed through the wallet and now sit in the delay queues. It contains all
// the information required to check readiness and execute the scheduled
// calls once their delay has passed.
type TimelockExecutable struct {
	proposal     *TimelockProposal
	predecessors []common.Hash
	executors    map[types.ChainSelector]sdk.TimelockExecutor
}

// NewTimelockExecutable creates a new TimelockExecutable from a proposal and
// a map of executors.
func NewTimelockExecutable(
	proposal *TimelockProposal,
	executors map[types.ChainSelector]sdk.TimelockExecutor,
) (*TimelockExecutable, error) {
	if proposal.Action != types.TimelockActionSchedule {
		return nil, errors.New("timelock executable can only be created from a proposal with action 'schedule'")
	}

	return &TimelockExecutable{
		proposal:  proposal,
		executors: executors,
	}, nil
}

// GetOpID returns the delay queue operation id of the operation at index.
func (t *TimelockExecutable) GetOpID(ctx context.Context, index int) (common.Hash, error) {
	if err := t.setPredecessors(ctx); err != nil {
		return common.Hash{}, err
	}

	op := t.proposal.Operations[index]

	converter, err := newTimelockConverter(op.ChainSelector)
	if err != nil {
		return common.Hash{}, err
	}

	timelockAddress, ok := t.proposal.TimelockAddresses[op.ChainSelector]
	if !ok {
		return common.Hash{}, NewTimelockAddressNotFoundError(op.ChainSelector)
	}

	_, operationID, err := converter.ConvertToChainOperations(
		ctx, op, timelockAddress, t.proposal.Delay, t.proposal.Action, t.predecessors[index], t.proposal.Salt(),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unable to convert operation: %w", err)
	}

	return operationID, nil
}

// IsReady checks if ALL the operations in the proposal are ready for
// execution.
//
// Note: there are some edge cases here where some operations are ready but
// others are not. This is not handled here. Regardless, execution should not
// begin until all operations are ready.
func (t *TimelockExecutable) IsReady(ctx context.Context) error {
	for index := range t.proposal.Operations {
		if err := t.IsOperationReady(ctx, index); err != nil {
			return err
		}
	}

	return nil
}

// IsChainReady checks if every operation on the given chain is ready for
// execution.
func (t *TimelockExecutable) IsChainReady(ctx context.Context, chainSelector types.ChainSelector) error {
	for index, op := range t.proposal.Operations {
		if op.ChainSelector != chainSelector {
			continue
		}

		if err := t.IsOperationReady(ctx, index); err != nil {
			return err
		}
	}

	return nil
}

// IsOperationReady checks if the operation at index has cleared its delay.
func (t *TimelockExecutable) IsOperationReady(ctx context.Context, index int) error {
	op := t.proposal.Operations[index]

	executor, ok := t.executors[op.ChainSelector]
	if !ok {
		return fmt.Errorf("executor not found for chain %d", op.ChainSelector)
	}

	operationID, err := t.GetOpID(ctx, index)
	if err != nil {
		return err
	}

	isReady, err := executor.IsOperationReady(ctx, t.proposal.TimelockAddresses[op.ChainSelector], operationID)
	if err != nil {
		return err
	}
	if !isReady {
		return NewOperationNotReadyError(index)
	}

	return nil
}

// IsOperationDone checks if the operation at index has already executed on
// its delay queue.
func (t *TimelockExecutable) IsOperationDone(ctx context.Context, index int) (bool, error) {
	op := t.proposal.Operations[index]

	executor, ok := t.executors[op.ChainSelector]
	if !ok {
		return false, fmt.Errorf("executor not found for chain %d", op.ChainSelector)
	}

	operationID, err := t.GetOpID(ctx, index)
	if err != nil {
		return false, err
	}

	return executor.IsOperationDone(ctx, t.proposal.TimelockAddresses[op.ChainSelector], operationID)
}

// Execute executes the scheduled operation at the given index on its delay
// queue.
func (t *TimelockExecutable) Execute(ctx context.Context, index int) (types.TransactionResult, error) {
	if err := t.setPredecessors(ctx); err != nil {
		return types.TransactionResult{}, err
	}

	op := t.proposal.Operations[index]

	executor, ok := t.executors[op.ChainSelector]
	if !ok {
		return types.TransactionResult{}, fmt.Errorf("executor not found for chain %d", op.ChainSelector)
	}

	return executor.Execute(
		ctx,
		op,
		t.proposal.TimelockAddresses[op.ChainSelector],
		t.predecessors[index],
		t.proposal.Salt(),
	)
}

// setPredecessors converts the proposal once and caches the predecessor id
// of every operation.
func (t *TimelockExecutable) setPredecessors(ctx context.Context) error {
	if len(t.predecessors) > 0 {
		return nil
	}

	converters := make(map[types.ChainSelector]sdk.TimelockConverter, len(t.proposal.ChainMetadata))
	for chainSelector := range t.proposal.ChainMetadata {
		converter, err := newTimelockConverter(chainSelector)
		if err != nil {
			return fmt.Errorf("unable to create converter: %w", err)
		}
		converters[chainSelector] = converter
	}

	var err error
	_, t.predecessors, err = t.proposal.Convert(ctx, converters)

	return err
}
