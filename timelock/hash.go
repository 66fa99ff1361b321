package timelock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
	"github.com/bastion-gov/bastion/types"
)

// DoneTimestamp is the sentinel stored once an operation has executed.
const DoneTimestamp uint64 = 1

// HashOperation computes the operation id the controller keys its bookkeeping
// on: keccak256 over the abi encoding of the call and its ordering context.
// Off-chain tooling uses this same function, so ids agree bit for bit.
func HashOperation(target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash) (common.Hash, error) {
	const _abi = `[{"type":"address"},{"type":"uint256"},{"type":"bytes"},{"type":"bytes32"},{"type":"bytes32"}]`
	if value == nil {
		value = new(big.Int)
	}
	if data == nil {
		data = []byte{}
	}
	encoded, err := abiUtils.Encode(_abi, target, value, data, predecessor, salt)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// StateOf derives an operation's lifecycle state from its stored timestamp
// and the chain clock. Zero means the operation is unknown; DoneTimestamp
// marks execution; anything later is scheduled and becomes ready once the
// clock reaches it.
func StateOf(timestamp, now uint64) types.OperationState {
	switch {
	case timestamp == 0:
		return types.OperationStateUnknown
	case timestamp == DoneTimestamp:
		return types.OperationStateDone
	case timestamp <= now:
		return types.OperationStateReady
	default:
		return types.OperationStateScheduled
	}
}
