package sdk

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

// Encoder hashes proposal operations and chain metadata into the leaves of a
// proposal's Merkle tree.
//
// opNonce is the wallet level nonce of the operation, i.e. the chain
// metadata's starting op count plus the operation's chain local index.
type Encoder interface {
	HashOperation(opNonce uint64, metadata types.ChainMetadata, op types.ChainOperation) (common.Hash, error)
	HashMetadata(metadata types.ChainMetadata) (common.Hash, error)
}
