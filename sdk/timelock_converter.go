package sdk

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

// TimelockConverter wraps a target call into the corresponding delay queue
// call for a timelock proposal action, and reports the queue operation id the
// wrapped call will schedule or cancel.
type TimelockConverter interface {
	ConvertToChainOperations(
		ctx context.Context,
		op types.ChainOperation,
		timelockAddress string,
		delay types.Duration,
		action types.TimelockAction,
		predecessor common.Hash,
		salt common.Hash,
	) ([]types.ChainOperation, common.Hash, error)
}
