package sdk

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

// Executor drives authorized proposal operations through a quorum wallet.
//
// This must be implemented by any chain driver.
type Executor interface {
	Inspector
	Encoder

	// AuthorizeRoot verifies the quorum's signatures over a proposal root
	// and arms the root for execution. The metadata proof must bind the
	// wallet named in metadata to the root.
	AuthorizeRoot(
		ctx context.Context,
		metadata types.ChainMetadata,
		proof []common.Hash,
		root [32]byte,
		validUntil uint32,
		sortedSignatures []types.Signature,
	) error

	// ExecuteOperation replays a proven operation through the wallet and
	// returns the resulting transaction.
	ExecuteOperation(
		ctx context.Context,
		metadata types.ChainMetadata,
		opNonce uint64,
		proof []common.Hash,
		op types.ChainOperation,
	) (types.TransactionResult, error)
}
