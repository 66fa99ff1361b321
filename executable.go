package bastion

import (
	"context"
	"fmt"
	"slices"

	"github.com/bastion-gov/bastion/internal/core/merkle"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

// Executable is a proposal that can be executed. It contains all the
// information required to authorize the proposal's root with each chain's
// executor and then drive the operations through the wallets.
type Executable struct {
	proposal  *Proposal
	executors map[types.ChainSelector]sdk.Executor
	encoders  map[types.ChainSelector]sdk.Encoder
	tree      *merkle.Tree
	txNonces  []uint64
}

// NewExecutable creates a new Executable from a proposal and a map of executors.
func NewExecutable(
	proposal *Proposal,
	executors map[types.ChainSelector]sdk.Executor,
) (*Executable, error) {
	// Generate the encoders from the proposal
	encoders, err := proposal.GetEncoders()
	if err != nil {
		return nil, err
	}

	// Generate the tx nonces from the proposal
	txNonces, err := proposal.TransactionNonces()
	if err != nil {
		return nil, err
	}

	// Generate the tree from the proposal
	tree, err := proposal.MerkleTree()
	if err != nil {
		return nil, err
	}

	return &Executable{
		proposal:  proposal,
		executors: executors,
		encoders:  encoders,
		tree:      tree,
		txNonces:  txNonces,
	}, nil
}

// AuthorizeRoot proves the proposal's metadata for chainSelector into the
// merkle root and hands the root with the proposal's signatures to the
// chain's executor. Signatures are passed sorted by recovered signer, the
// order executors verify them in.
func (e *Executable) AuthorizeRoot(ctx context.Context, chainSelector types.ChainSelector) error {
	executor, ok := e.executors[chainSelector]
	if !ok {
		return fmt.Errorf("executor not found for chain %d", chainSelector)
	}

	metadata, ok := e.proposal.ChainMetadata[chainSelector]
	if !ok {
		return NewChainMetadataNotFoundError(chainSelector)
	}

	metadataHash, err := e.encoders[chainSelector].HashMetadata(metadata)
	if err != nil {
		return err
	}

	proof, err := e.tree.GetProof(metadataHash)
	if err != nil {
		return err
	}

	hash, err := e.proposal.SigningHash()
	if err != nil {
		return err
	}

	// Sort signatures by recovered address
	sortedSignatures := slices.Clone(e.proposal.Signatures) // Clone so we don't modify the original
	slices.SortFunc(sortedSignatures, func(a, b types.Signature) int {
		recoveredSignerA, _ := a.Recover(hash)
		recoveredSignerB, _ := b.Recover(hash)

		return recoveredSignerA.Cmp(recoveredSignerB)
	})

	return executor.AuthorizeRoot(
		ctx,
		metadata,
		proof,
		[32]byte(e.tree.Root),
		e.proposal.ValidUntil,
		sortedSignatures,
	)
}

// Execute drives the operation at index through its chain's wallet.
func (e *Executable) Execute(ctx context.Context, index int) (types.TransactionResult, error) {
	if index < 0 || index >= len(e.proposal.Operations) {
		return types.TransactionResult{}, fmt.Errorf("operation index out of range: %d", index)
	}

	op := e.proposal.Operations[index]
	chainSelector := op.ChainSelector
	metadata := e.proposal.ChainMetadata[chainSelector]

	executor, ok := e.executors[chainSelector]
	if !ok {
		return types.TransactionResult{}, fmt.Errorf("executor not found for chain %d", chainSelector)
	}

	operationHash, err := e.encoders[chainSelector].HashOperation(e.txNonces[index], metadata, op)
	if err != nil {
		return types.TransactionResult{}, err
	}

	proof, err := e.tree.GetProof(operationHash)
	if err != nil {
		return types.TransactionResult{}, err
	}

	return executor.ExecuteOperation(
		ctx,
		metadata,
		e.txNonces[index],
		proof,
		op,
	)
}

// TxNonce returns the full wallet nonce of the operation at index.
func (e *Executable) TxNonce(index int) (uint64, error) {
	if index < 0 || index >= len(e.txNonces) {
		return 0, fmt.Errorf("index out of range: %d >= %d", index, len(e.txNonces))
	}

	return e.txNonces[index], nil
}
