package fabric

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	cselectors "github.com/smartcontractkit/chain-selectors"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/timelock"
	"github.com/bastion-gov/bastion/types"
)

var _ sdk.TimelockExecutor = (*TimelockExecutor)(nil)

// TimelockExecutor executes ready delay queue operations from a fixed
// sender. The sender must hold the executor role unless execution is open,
// and needs enough balance to cover value bearing operations.
type TimelockExecutor struct {
	TimelockInspector

	env    *chain.Env
	sender common.Address
}

// TimelockExecutionRecord is the RawData carried by a timelock execution's
// transaction result.
type TimelockExecutionRecord struct {
	OpID   common.Hash
	Sender common.Address
}

// NewTimelockExecutor creates a new TimelockExecutor that executes as sender.
func NewTimelockExecutor(env *chain.Env, sender common.Address) *TimelockExecutor {
	return &TimelockExecutor{
		TimelockInspector: *NewTimelockInspector(env),
		env:               env,
		sender:            sender,
	}
}

// Execute runs the ready operation described by op on the queue at
// timelockAddress, attaching the operation's value as payment.
func (t *TimelockExecutor) Execute(
	ctx context.Context,
	op types.ChainOperation,
	timelockAddress string,
	predecessor common.Hash,
	salt common.Hash,
) (types.TransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return types.TransactionResult{}, err
	}

	value := op.Value
	if value == nil {
		value = big.NewInt(0)
	}

	opID, err := timelock.HashOperation(op.To, value, op.Data, predecessor, salt)
	if err != nil {
		return types.TransactionResult{}, err
	}

	data, err := timelock.PackExecute(op.To, value, op.Data, predecessor, salt)
	if err != nil {
		return types.TransactionResult{}, err
	}

	queueAddr := common.HexToAddress(timelockAddress)
	queue := timelock.NewBinding(t.env, queueAddr)
	if err := queue.Execute(t.sender, value, op.To, value, op.Data, predecessor, salt); err != nil {
		return types.TransactionResult{}, err
	}

	return types.TransactionResult{
		Hash:        crypto.Keccak256Hash(t.sender.Bytes(), queueAddr.Bytes(), data).Hex(),
		ChainFamily: cselectors.FamilyEVM,
		RawData: &TimelockExecutionRecord{
			OpID:   opID,
			Sender: t.sender,
		},
	}, nil
}
