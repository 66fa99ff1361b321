package sdk

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

// TimelockExecutor executes ready operations on a delay queue controller.
type TimelockExecutor interface {
	TimelockInspector

	Execute(
		ctx context.Context,
		op types.ChainOperation,
		timelockAddress string,
		predecessor common.Hash,
		salt common.Hash,
	) (types.TransactionResult, error)
}
