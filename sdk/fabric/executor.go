package fabric

import (
	"bytes"
	"context"
	"encoding/binary"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	cselectors "github.com/smartcontractkit/chain-selectors"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/internal/core/merkle"
	"github.com/bastion-gov/bastion/quorum"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

var _ sdk.Executor = (*Executor)(nil)

// Executor verifies signed proposal roots and drives their operations
// through a quorum wallet.
//
// The wallet stores no root, so authorization lives in the driver:
// AuthorizeRoot arms a root once its signatures clear the wallet threshold,
// and ExecuteOperation replays operations that prove membership in the armed
// root, using the recovered signers as the wallet senders.
type Executor struct {
	*Encoder
	*Inspector

	env *chain.Env

	mu    sync.Mutex
	armed map[common.Address]*armedRoot
}

// armedRoot is a verified proposal root together with the owners that signed
// it, in ascending address order.
type armedRoot struct {
	root       common.Hash
	validUntil uint32
	signers    []common.Address
}

// ExecutionRecord is the RawData carried by a fabric transaction result. It
// records how the wallet transaction was driven.
type ExecutionRecord struct {
	TxID       uint64
	Proposer   common.Address
	Approvers  []common.Address
	ReturnData []byte
}

// NewExecutor returns a new Executor over env.
func NewExecutor(env *chain.Env, encoder *Encoder) *Executor {
	return &Executor{
		Encoder:   encoder,
		Inspector: NewInspector(env),
		env:       env,
		armed:     make(map[common.Address]*armedRoot),
	}
}

// AuthorizeRoot checks a proposal root against the wallet named in metadata:
// the proof must bind the metadata leaf to the root, the root must not be
// expired, the wallet's transaction count must sit inside the nonce window
// the metadata brackets, and the signatures must recover a quorum of owners
// in strictly ascending address order. On success the root replaces any
// previously armed root for the wallet.
func (e *Executor) AuthorizeRoot(
	ctx context.Context,
	metadata types.ChainMetadata,
	proof []common.Hash,
	root [32]byte,
	validUntil uint32,
	sortedSignatures []types.Signature,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := e.env.Now()
	if uint64(validUntil) < now {
		return sdk.NewRootExpiredError(validUntil, now)
	}

	metadataHash, err := e.HashMetadata(metadata)
	if err != nil {
		return err
	}
	if !merkle.VerifyProof(metadataHash, proof, common.Hash(root)) {
		return sdk.NewInvalidProofError(metadataHash, common.Hash(root))
	}

	config, err := e.GetConfig(ctx, metadata.WalletAddress)
	if err != nil {
		return err
	}

	opCount, err := e.GetOpCount(ctx, metadata.WalletAddress)
	if err != nil {
		return err
	}
	if opCount < metadata.StartingOpCount || opCount > metadata.StartingOpCount+e.TxCount {
		return sdk.NewNonceMismatchError(metadata.StartingOpCount, opCount)
	}

	signingHash := sdk.RootSigningHash(common.Hash(root), validUntil)

	signers := make([]common.Address, 0, len(sortedSignatures))
	var prev common.Address
	for i, sig := range sortedSignatures {
		signer, err := sig.Recover(signingHash)
		if err != nil {
			return err
		}
		if i > 0 && signer.Cmp(prev) <= 0 {
			return sdk.ErrUnsortedSignatures
		}
		if !slices.Contains(config.Owners, signer) {
			return sdk.NewInvalidSignerError(signer)
		}

		signers = append(signers, signer)
		prev = signer
	}

	if len(signers) < int(config.Threshold) {
		return sdk.NewQuorumNotMetError(len(signers), config.Threshold)
	}

	e.mu.Lock()
	e.armed[common.HexToAddress(metadata.WalletAddress)] = &armedRoot{
		root:       common.Hash(root),
		validUntil: validUntil,
		signers:    signers,
	}
	e.mu.Unlock()

	return nil
}

// ExecuteOperation proves op against the wallet's armed root and replays it:
// the first signer proposes, further signers approve up to the threshold,
// and the proposer executes. The wallet counts the proposer's approval
// itself. A failed inner call leaves the wallet transaction pending, so the
// same operation can be executed again once the target recovers.
func (e *Executor) ExecuteOperation(
	ctx context.Context,
	metadata types.ChainMetadata,
	opNonce uint64,
	proof []common.Hash,
	op types.ChainOperation,
) (types.TransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return types.TransactionResult{}, err
	}

	walletAddr := common.HexToAddress(metadata.WalletAddress)

	e.mu.Lock()
	armed, ok := e.armed[walletAddr]
	e.mu.Unlock()
	if !ok {
		return types.TransactionResult{}, sdk.ErrNoRootAuthorized
	}

	now := e.env.Now()
	if uint64(armed.validUntil) < now {
		return types.TransactionResult{}, sdk.NewRootExpiredError(armed.validUntil, now)
	}

	leaf, err := e.HashOperation(opNonce, metadata, op)
	if err != nil {
		return types.TransactionResult{}, err
	}
	if !merkle.VerifyProof(leaf, proof, armed.root) {
		return types.TransactionResult{}, sdk.NewInvalidProofError(leaf, armed.root)
	}

	wallet := quorum.NewBinding(e.env, walletAddr)

	opCount, err := wallet.TransactionCount()
	if err != nil {
		return types.TransactionResult{}, err
	}

	threshold, err := wallet.Threshold()
	if err != nil {
		return types.TransactionResult{}, err
	}

	value := op.Value
	if value == nil {
		value = big.NewInt(0)
	}

	proposer := armed.signers[0]
	approvers := armed.signers[:threshold]

	// Wallet transaction ids are one based, so the operation with nonce n
	// lands as transaction n+1. A count one past the nonce means an earlier
	// attempt already proposed and approved this operation but its inner
	// call failed; re-execute the pending transaction instead of proposing a
	// duplicate.
	txID := opNonce + 1
	switch {
	case opCount == opNonce:
		id, err := wallet.Propose(proposer, op.To, value, op.Data)
		if err != nil {
			return types.TransactionResult{}, err
		}
		txID = id

		for _, signer := range approvers[1:] {
			if err := wallet.Approve(signer, txID); err != nil {
				return types.TransactionResult{}, err
			}
		}
	case opCount == opNonce+1:
		tx, err := wallet.GetTransaction(txID)
		if err != nil {
			return types.TransactionResult{}, err
		}
		if tx.Executed || tx.Target != op.To || tx.Value.Cmp(value) != 0 || !bytes.Equal(tx.Data, op.Data) {
			return types.TransactionResult{}, sdk.NewNonceMismatchError(opNonce, opCount)
		}
	default:
		return types.TransactionResult{}, sdk.NewNonceMismatchError(opNonce, opCount)
	}

	executed, returnData, err := wallet.Execute(proposer, txID)
	if err != nil {
		return types.TransactionResult{}, err
	}
	if !executed {
		return types.TransactionResult{}, sdk.NewExecutionFailedError(txID, e.failureReason(walletAddr, txID))
	}

	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], txID)

	return types.TransactionResult{
		Hash:        crypto.Keccak256Hash(proposer.Bytes(), walletAddr.Bytes(), idBytes[:], op.Data).Hex(),
		ChainFamily: cselectors.FamilyEVM,
		RawData: &ExecutionRecord{
			TxID:       txID,
			Proposer:   proposer,
			Approvers:  slices.Clone(approvers),
			ReturnData: returnData,
		},
	}, nil
}

// failureReason digs the revert reason for a failed wallet transaction out
// of the wallet's ExecutionFailed event.
func (e *Executor) failureReason(wallet common.Address, txID uint64) string {
	events := e.env.EventsFrom(wallet)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name != "ExecutionFailed" {
			continue
		}
		if id, ok := events[i].Field("id").(uint64); ok && id == txID {
			reason, _ := events[i].Field("reason").(string)

			return reason
		}
	}

	return ""
}
