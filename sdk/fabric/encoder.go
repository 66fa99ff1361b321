package fabric

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

var (
	// domainSeparatorOp tags operation leaves in the proposal Merkle tree so
	// they can never collide with metadata leaves.
	domainSeparatorOp = crypto.Keccak256Hash([]byte("BASTION_QUORUM_WALLET_DOMAIN_SEPARATOR_OP"))

	// domainSeparatorMetadata tags chain metadata leaves.
	domainSeparatorMetadata = crypto.Keccak256Hash([]byte("BASTION_QUORUM_WALLET_DOMAIN_SEPARATOR_METADATA"))
)

var _ sdk.Encoder = (*Encoder)(nil)

// Encoder hashes proposal operations and chain metadata into the Merkle
// leaves for one chain's quorum wallet. TxCount is the total number of
// operations the proposal carries for this chain.
type Encoder struct {
	ChainSelector types.ChainSelector
	TxCount       uint64
}

// NewEncoder returns a new Encoder.
func NewEncoder(sel types.ChainSelector, txCount uint64) *Encoder {
	return &Encoder{
		ChainSelector: sel,
		TxCount:       txCount,
	}
}

// HashOperation hashes one operation into its tree leaf. The leaf binds the
// chain id, the wallet, the wallet level nonce and the full call, so a proof
// for it can authorize exactly one invocation on exactly one wallet.
func (e *Encoder) HashOperation(
	opNonce uint64,
	metadata types.ChainMetadata,
	op types.ChainOperation,
) (common.Hash, error) {
	chainID, err := evmChainID(e.ChainSelector)
	if err != nil {
		return common.Hash{}, err
	}

	value := op.Value
	if value == nil {
		value = big.NewInt(0)
	}
	data := op.Data
	if data == nil {
		data = []byte{}
	}

	encoded, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"uint256"},{"type":"address"},{"type":"uint256"},{"type":"address"},{"type":"uint256"},{"type":"bytes"}]`,
		domainSeparatorOp,
		new(big.Int).SetUint64(chainID),
		common.HexToAddress(metadata.WalletAddress),
		new(big.Int).SetUint64(opNonce),
		op.To,
		value,
		data,
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// HashMetadata hashes a chain's metadata leaf, which brackets the wallet
// nonce range the root covers.
func (e *Encoder) HashMetadata(metadata types.ChainMetadata) (common.Hash, error) {
	chainID, err := evmChainID(e.ChainSelector)
	if err != nil {
		return common.Hash{}, err
	}

	encoded, err := abiUtils.Encode(
		`[{"type":"bytes32"},{"type":"uint256"},{"type":"address"},{"type":"uint256"},{"type":"uint256"}]`,
		domainSeparatorMetadata,
		new(big.Int).SetUint64(chainID),
		common.HexToAddress(metadata.WalletAddress),
		new(big.Int).SetUint64(metadata.StartingOpCount),
		new(big.Int).SetUint64(metadata.StartingOpCount+e.TxCount),
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}
