// Package upgrades implements the storage-preserving upgrade pipeline: an
// EIP-1967 transparent Proxy, the Registrar owning the proxies' admin slot,
// and the Authorizer that adds a second delay clock in front of every pointer
// swap. The authorizer is owned by the delay queue, so a logic replacement
// rides out both delays back to back.
package upgrades

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
	"github.com/bastion-gov/bastion/types"
)

// doneTimestamp marks an executed upgrade request. Same sentinel encoding as
// the delay queue, on an independent clock.
const doneTimestamp uint64 = 1

// HashUpgrade derives the id of an upgrade request from its full content. A
// pointer-swap-only request uses empty initData.
func HashUpgrade(registrar, proxy, implementation common.Address, initData []byte) (common.Hash, error) {
	const _abi = `[{"type":"address"},{"type":"address"},{"type":"address"},{"type":"bytes"}]`

	if initData == nil {
		initData = []byte{}
	}

	encoded, err := abiUtils.Encode(_abi, registrar, proxy, implementation, initData)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// UpgradeStateOf derives the lifecycle state of an upgrade request from its
// stored timestamp and the chain clock.
func UpgradeStateOf(timestamp, now uint64) types.OperationState {
	switch {
	case timestamp == 0:
		return types.OperationStateUnknown
	case timestamp == doneTimestamp:
		return types.OperationStateDone
	case timestamp <= now:
		return types.OperationStateReady
	default:
		return types.OperationStateScheduled
	}
}

// AuthorizerABI is the dispatch surface of the upgrade authorizer.
const AuthorizerABI = `[
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"pendingOwner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"acceptOwnership","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"upgradeDelay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"setUpgradeDelay","stateMutability":"nonpayable","inputs":[{"name":"newDelay","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"scheduleUpgrade","stateMutability":"nonpayable","inputs":[{"name":"registrar","type":"address"},{"name":"proxy","type":"address"},{"name":"implementation","type":"address"}],"outputs":[]},
	{"type":"function","name":"scheduleUpgradeAndCall","stateMutability":"nonpayable","inputs":[{"name":"registrar","type":"address"},{"name":"proxy","type":"address"},{"name":"implementation","type":"address"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"executeUpgrade","stateMutability":"nonpayable","inputs":[{"name":"registrar","type":"address"},{"name":"proxy","type":"address"},{"name":"implementation","type":"address"}],"outputs":[]},
	{"type":"function","name":"executeUpgradeAndCall","stateMutability":"payable","inputs":[{"name":"registrar","type":"address"},{"name":"proxy","type":"address"},{"name":"implementation","type":"address"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"cancelUpgrade","stateMutability":"nonpayable","inputs":[{"name":"id","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"hashUpgrade","stateMutability":"pure","inputs":[{"name":"registrar","type":"address"},{"name":"proxy","type":"address"},{"name":"implementation","type":"address"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getTimestamp","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"isUpgradePending","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isUpgradeReady","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isUpgradeDone","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]}
]`

var authorizerABI = abiUtils.MustParse(AuthorizerABI)

// PackScheduleUpgrade encodes a scheduleUpgrade call for the authorizer.
func PackScheduleUpgrade(registrar, proxy, implementation common.Address) ([]byte, error) {
	return authorizerABI.Pack("scheduleUpgrade", registrar, proxy, implementation)
}

// PackScheduleUpgradeAndCall encodes a scheduleUpgradeAndCall call for the
// authorizer.
func PackScheduleUpgradeAndCall(registrar, proxy, implementation common.Address, data []byte) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}

	return authorizerABI.Pack("scheduleUpgradeAndCall", registrar, proxy, implementation, data)
}

// PackExecuteUpgrade encodes an executeUpgrade call for the authorizer.
func PackExecuteUpgrade(registrar, proxy, implementation common.Address) ([]byte, error) {
	return authorizerABI.Pack("executeUpgrade", registrar, proxy, implementation)
}

// PackExecuteUpgradeAndCall encodes an executeUpgradeAndCall call for the
// authorizer.
func PackExecuteUpgradeAndCall(registrar, proxy, implementation common.Address, data []byte) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}

	return authorizerABI.Pack("executeUpgradeAndCall", registrar, proxy, implementation, data)
}

// PackCancelUpgrade encodes a cancelUpgrade call for the authorizer.
func PackCancelUpgrade(id common.Hash) ([]byte, error) {
	return authorizerABI.Pack("cancelUpgrade", id)
}

// PackSetUpgradeDelay encodes a setUpgradeDelay call for the authorizer.
func PackSetUpgradeDelay(newDelay *big.Int) ([]byte, error) {
	return authorizerABI.Pack("setUpgradeDelay", newDelay)
}

// Authorizer gates pointer swaps behind its own delay. Requests are keyed by
// HashUpgrade and stamped with a ready timestamp; executing a ready request
// forwards it to the registrar, atomically with the initializer when one is
// attached.
type Authorizer struct {
	ownable      twoStepOwnable
	upgradeDelay uint64
	requests     map[common.Hash]uint64
}

var (
	_ chain.Contract    = (*Authorizer)(nil)
	_ chain.Snapshotter = (*Authorizer)(nil)
)

// NewAuthorizer creates an authorizer with the given delay in seconds, owned
// by owner.
func NewAuthorizer(upgradeDelay uint64, owner common.Address) *Authorizer {
	return &Authorizer{
		ownable:      twoStepOwnable{owner: owner},
		upgradeDelay: upgradeDelay,
		requests:     make(map[common.Hash]uint64),
	}
}

// Call dispatches ABI-encoded calldata to the authorizer.
func (a *Authorizer) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(authorizerABI, input)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "owner":
		return abiUtils.PackResult(method, a.ownable.owner)
	case "pendingOwner":
		return abiUtils.PackResult(method, a.ownable.pendingOwner)
	case "transferOwnership":
		return nil, a.ownable.transferOwnership(frame, args[0].(common.Address))
	case "acceptOwnership":
		return nil, a.ownable.acceptOwnership(frame)
	case "upgradeDelay":
		return abiUtils.PackResult(method, new(big.Int).SetUint64(a.upgradeDelay))
	case "setUpgradeDelay":
		return nil, a.setUpgradeDelay(frame, args[0].(*big.Int))
	case "scheduleUpgrade":
		return nil, a.schedule(frame, args[0].(common.Address), args[1].(common.Address), args[2].(common.Address), nil)
	case "scheduleUpgradeAndCall":
		return nil, a.schedule(frame, args[0].(common.Address), args[1].(common.Address), args[2].(common.Address), args[3].([]byte))
	case "executeUpgrade":
		return nil, a.execute(frame, args[0].(common.Address), args[1].(common.Address), args[2].(common.Address), nil, false)
	case "executeUpgradeAndCall":
		return nil, a.execute(frame, args[0].(common.Address), args[1].(common.Address), args[2].(common.Address), args[3].([]byte), true)
	case "cancelUpgrade":
		return nil, a.cancel(frame, common.Hash(args[0].([32]byte)))
	case "hashUpgrade":
		id, err := HashUpgrade(args[0].(common.Address), args[1].(common.Address), args[2].(common.Address), args[3].([]byte))
		if err != nil {
			return nil, err
		}

		return abiUtils.PackResult(method, id)
	case "getTimestamp":
		ts := a.requests[common.Hash(args[0].([32]byte))]

		return abiUtils.PackResult(method, new(big.Int).SetUint64(ts))
	case "isUpgradePending":
		state := a.stateOf(common.Hash(args[0].([32]byte)), frame)

		return abiUtils.PackResult(method, state == types.OperationStateScheduled || state == types.OperationStateReady)
	case "isUpgradeReady":
		return abiUtils.PackResult(method, a.stateOf(common.Hash(args[0].([32]byte)), frame) == types.OperationStateReady)
	case "isUpgradeDone":
		return abiUtils.PackResult(method, a.stateOf(common.Hash(args[0].([32]byte)), frame) == types.OperationStateDone)
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

func (a *Authorizer) setUpgradeDelay(frame *chain.Frame, newDelay *big.Int) error {
	if err := a.ownable.checkOwner(frame.Sender()); err != nil {
		return err
	}
	if !newDelay.IsUint64() {
		return NewInvalidDelayError(newDelay)
	}

	previous := a.upgradeDelay
	a.upgradeDelay = newDelay.Uint64()
	frame.Emit("UpgradeDelaySet", "previousDelay", previous, "newDelay", a.upgradeDelay)

	return nil
}

func (a *Authorizer) schedule(frame *chain.Frame, registrar, proxy, implementation common.Address, initData []byte) error {
	if err := a.ownable.checkOwner(frame.Sender()); err != nil {
		return err
	}

	id, err := HashUpgrade(registrar, proxy, implementation, initData)
	if err != nil {
		return err
	}
	if a.requests[id] != 0 {
		return NewUpgradeAlreadyScheduledError(id)
	}

	readyAt := frame.Env().Now() + a.upgradeDelay
	a.requests[id] = readyAt
	frame.Emit("UpgradeScheduled",
		"id", id, "registrar", registrar, "proxy", proxy, "implementation", implementation, "readyAt", readyAt)

	return nil
}

func (a *Authorizer) execute(frame *chain.Frame, registrar, proxy, implementation common.Address, initData []byte, andCall bool) error {
	if err := a.ownable.checkOwner(frame.Sender()); err != nil {
		return err
	}

	id, err := HashUpgrade(registrar, proxy, implementation, initData)
	if err != nil {
		return err
	}

	switch UpgradeStateOf(a.requests[id], frame.Env().Now()) {
	case types.OperationStateDone:
		return NewUpgradeAlreadyDoneError(id)
	case types.OperationStateReady:
	default:
		return NewUpgradeNotReadyError(id)
	}

	var calldata []byte
	if andCall {
		calldata, err = PackRegistrarUpgradeAndCall(proxy, implementation, initData)
	} else {
		calldata, err = PackRegistrarUpgrade(proxy, implementation)
	}
	if err != nil {
		return err
	}

	// A failing swap or initializer reverts the whole transaction, including
	// the done mark below.
	if _, err := frame.Sub(registrar, frame.Value(), calldata); err != nil {
		return err
	}

	a.requests[id] = doneTimestamp
	frame.Emit("UpgradeExecuted", "id", id, "proxy", proxy, "implementation", implementation)

	return nil
}

func (a *Authorizer) cancel(frame *chain.Frame, id common.Hash) error {
	if err := a.ownable.checkOwner(frame.Sender()); err != nil {
		return err
	}

	switch UpgradeStateOf(a.requests[id], frame.Env().Now()) {
	case types.OperationStateScheduled, types.OperationStateReady:
	default:
		return NewUpgradeNotPendingError(id)
	}

	delete(a.requests, id)
	frame.Emit("UpgradeCancelled", "id", id)

	return nil
}

func (a *Authorizer) stateOf(id common.Hash, frame *chain.Frame) types.OperationState {
	return UpgradeStateOf(a.requests[id], frame.Env().Now())
}

type authorizerState struct {
	ownable      twoStepOwnable
	upgradeDelay uint64
	requests     map[common.Hash]uint64
}

// Snapshot implements chain.Snapshotter.
func (a *Authorizer) Snapshot() any {
	requests := make(map[common.Hash]uint64, len(a.requests))
	for id, ts := range a.requests {
		requests[id] = ts
	}

	return &authorizerState{ownable: a.ownable, upgradeDelay: a.upgradeDelay, requests: requests}
}

// Restore implements chain.Snapshotter.
func (a *Authorizer) Restore(snap any) {
	state := snap.(*authorizerState)
	a.ownable = state.ownable
	a.upgradeDelay = state.upgradeDelay
	a.requests = state.requests
}
