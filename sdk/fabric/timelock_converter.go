package fabric

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/timelock"
	"github.com/bastion-gov/bastion/types"
)

var _ sdk.TimelockConverter = (*TimelockConverter)(nil)

// TimelockConverter wraps proposal calls into delay queue calls. Conversion
// is pure: it needs no environment, only the queue address the wrapped call
// targets.
type TimelockConverter struct{}

// NewTimelockConverter creates a new TimelockConverter.
func NewTimelockConverter() *TimelockConverter {
	return &TimelockConverter{}
}

// ConvertToChainOperations wraps op into the queue call for action and
// returns it together with the queue operation id. Schedule wraps the full
// call with its delay; cancel targets the operation id alone.
func (t *TimelockConverter) ConvertToChainOperations(
	_ context.Context,
	op types.ChainOperation,
	timelockAddress string,
	delay types.Duration,
	action types.TimelockAction,
	predecessor common.Hash,
	salt common.Hash,
) ([]types.ChainOperation, common.Hash, error) {
	value := op.Value
	if value == nil {
		value = big.NewInt(0)
	}

	operationID, err := timelock.HashOperation(op.To, value, op.Data, predecessor, salt)
	if err != nil {
		return nil, common.Hash{}, err
	}

	var data []byte
	switch action {
	case types.TimelockActionSchedule:
		data, err = timelock.PackSchedule(op.To, value, op.Data, predecessor, salt, big.NewInt(int64(delay.Seconds())))
	case types.TimelockActionCancel:
		data, err = timelock.PackCancel(operationID)
	default:
		err = sdk.NewInvalidTimelockActionError(string(action))
	}
	if err != nil {
		return nil, common.Hash{}, err
	}

	wrapped := types.ChainOperation{
		ChainSelector: op.ChainSelector,
		Call: types.Call{
			To:    common.HexToAddress(timelockAddress),
			Value: big.NewInt(0),
			Data:  data,
		},
	}

	return []types.ChainOperation{wrapped}, operationID, nil
}
