// Package quorum implements the M-of-N approval wallet that fronts every
// governance action. Owners propose transactions, gather approvals, and
// execute once the threshold is reached. A failed inner call leaves the
// transaction open so it can be retried after the cause is fixed.
package quorum

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// Wallet is the quorum wallet contract. Transaction ids are assigned
// sequentially starting at 1.
type Wallet struct {
	owners    []common.Address
	threshold uint8
	nextID    uint64
	txs       map[uint64]*walletTx
}

var (
	_ chain.Contract    = (*Wallet)(nil)
	_ chain.Snapshotter = (*Wallet)(nil)
)

type walletTx struct {
	target    common.Address
	value     *big.Int
	data      []byte
	executed  bool
	approvals map[common.Address]struct{}
}

// NewWallet creates a wallet with the given owner set and approval threshold.
// Owners must be unique and non-zero, and the threshold must satisfy
// 0 < threshold <= len(owners).
func NewWallet(owners []common.Address, threshold uint8) (*Wallet, error) {
	if len(owners) == 0 {
		return nil, ErrNoOwners
	}

	seen := make(map[common.Address]struct{}, len(owners))
	for _, owner := range owners {
		if owner == (common.Address{}) {
			return nil, ErrZeroOwner
		}
		if _, ok := seen[owner]; ok {
			return nil, NewDuplicateOwnerError(owner)
		}
		seen[owner] = struct{}{}
	}

	if threshold == 0 || int(threshold) > len(owners) {
		return nil, NewInvalidThresholdError(threshold, len(owners))
	}

	return &Wallet{
		owners:    slices.Clone(owners),
		threshold: threshold,
		txs:       make(map[uint64]*walletTx),
	}, nil
}

// Call dispatches ABI-encoded calldata to the wallet.
func (w *Wallet) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(walletABI, input)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "propose":
		id, err := w.propose(frame, args[0].(common.Address), args[1].(*big.Int), args[2].([]byte))
		if err != nil {
			return nil, err
		}

		return abiUtils.PackResult(method, new(big.Int).SetUint64(id))
	case "approve":
		return nil, w.approve(frame, args[0].(*big.Int).Uint64())
	case "execute":
		ok, ret, err := w.execute(frame, args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}

		return abiUtils.PackResult(method, ok, ret)
	case "getTransaction":
		tx, ok := w.txs[args[0].(*big.Int).Uint64()]
		if !ok {
			return nil, NewTransactionNotFoundError(args[0].(*big.Int).Uint64())
		}

		return abiUtils.PackResult(method,
			tx.target, new(big.Int).Set(tx.value), tx.data, tx.executed, big.NewInt(int64(len(tx.approvals))))
	case "hasApproved":
		tx, ok := w.txs[args[0].(*big.Int).Uint64()]
		if !ok {
			return nil, NewTransactionNotFoundError(args[0].(*big.Int).Uint64())
		}
		_, approved := tx.approvals[args[1].(common.Address)]

		return abiUtils.PackResult(method, approved)
	case "isOwner":
		return abiUtils.PackResult(method, w.isOwner(args[0].(common.Address)))
	case "owners":
		return abiUtils.PackResult(method, slices.Clone(w.owners))
	case "threshold":
		return abiUtils.PackResult(method, big.NewInt(int64(w.threshold)))
	case "transactionCount":
		return abiUtils.PackResult(method, new(big.Int).SetUint64(w.nextID))
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

// propose records a new transaction and counts the proposer's approval.
func (w *Wallet) propose(frame *chain.Frame, target common.Address, value *big.Int, data []byte) (uint64, error) {
	if err := w.checkOwner(frame.Sender()); err != nil {
		return 0, err
	}

	w.nextID++
	id := w.nextID
	w.txs[id] = &walletTx{
		target:    target,
		value:     new(big.Int).Set(value),
		data:      slices.Clone(data),
		approvals: map[common.Address]struct{}{frame.Sender(): {}},
	}

	frame.Emit("TransactionProposed",
		"id", id, "proposer", frame.Sender(), "target", target, "value", value.String())
	frame.Emit("TransactionApproved", "id", id, "owner", frame.Sender())

	return id, nil
}

// approve adds the sender's approval to a pending transaction.
func (w *Wallet) approve(frame *chain.Frame, id uint64) error {
	if err := w.checkOwner(frame.Sender()); err != nil {
		return err
	}

	tx, ok := w.txs[id]
	if !ok {
		return NewTransactionNotFoundError(id)
	}
	if tx.executed {
		return NewAlreadyExecutedError(id)
	}
	if _, approved := tx.approvals[frame.Sender()]; approved {
		return NewAlreadyApprovedError(id, frame.Sender())
	}

	tx.approvals[frame.Sender()] = struct{}{}
	frame.Emit("TransactionApproved", "id", id, "owner", frame.Sender())

	return nil
}

// execute runs a transaction once it holds enough approvals. A failing inner
// call is reported as ok=false and rolled back without consuming the
// transaction, so execute can be retried.
func (w *Wallet) execute(frame *chain.Frame, id uint64) (bool, []byte, error) {
	if err := w.checkOwner(frame.Sender()); err != nil {
		return false, nil, err
	}

	tx, ok := w.txs[id]
	if !ok {
		return false, nil, NewTransactionNotFoundError(id)
	}
	if tx.executed {
		return false, nil, NewAlreadyExecutedError(id)
	}
	if len(tx.approvals) < int(w.threshold) {
		return false, nil, NewThresholdNotMetError(id, len(tx.approvals), w.threshold)
	}

	ret, err := frame.Sub(tx.target, tx.value, tx.data)
	if err != nil {
		frame.Emit("ExecutionFailed", "id", id, "reason", err.Error())

		return false, []byte{}, nil
	}

	tx.executed = true
	frame.Emit("TransactionExecuted", "id", id)

	if ret == nil {
		ret = []byte{}
	}

	return true, ret, nil
}

func (w *Wallet) isOwner(account common.Address) bool {
	return slices.Contains(w.owners, account)
}

func (w *Wallet) checkOwner(account common.Address) error {
	if !w.isOwner(account) {
		return NewNotOwnerError(account)
	}

	return nil
}

type walletState struct {
	nextID uint64
	txs    map[uint64]*walletTx
}

// Snapshot implements chain.Snapshotter.
func (w *Wallet) Snapshot() any {
	txs := make(map[uint64]*walletTx, len(w.txs))
	for id, tx := range w.txs {
		approvals := make(map[common.Address]struct{}, len(tx.approvals))
		for owner := range tx.approvals {
			approvals[owner] = struct{}{}
		}
		txs[id] = &walletTx{
			target:    tx.target,
			value:     new(big.Int).Set(tx.value),
			data:      tx.data,
			executed:  tx.executed,
			approvals: approvals,
		}
	}

	return &walletState{nextID: w.nextID, txs: txs}
}

// Restore implements chain.Snapshotter.
func (w *Wallet) Restore(snap any) {
	state := snap.(*walletState)
	w.nextID = state.nextID
	w.txs = state.txs
}
