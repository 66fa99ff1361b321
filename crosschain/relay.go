// Package crosschain carries governance calls from the settlement chain to
// the execution chain. The Relay computes an exact funding value for each
// message and forwards it to the Inbox, which escrows the value and enqueues
// a retryable ticket; the Bridge later runs the ticket on L2 from the aliased
// L1 sender. Receivers authenticate by recomputing the alias, so no trusted
// flag ever crosses the bridge.
package crosschain

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// RelayABI is the relay's call surface.
const RelayABI = `[
	{
		"inputs": [],
		"name": "owner",
		"outputs": [{"type": "address", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "inbox",
		"outputs": [{"type": "address", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "paused",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "pause",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "unpause",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [
			{"type": "address", "name": "target"},
			{"type": "uint256", "name": "maxSubmissionCost"},
			{"type": "uint256", "name": "gasLimit"},
			{"type": "uint256", "name": "maxFeePerGas"}
		],
		"name": "sendPauseToL2",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"type": "address", "name": "target"},
			{"type": "uint256", "name": "maxSubmissionCost"},
			{"type": "uint256", "name": "gasLimit"},
			{"type": "uint256", "name": "maxFeePerGas"}
		],
		"name": "sendUnpauseToL2",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"type": "address", "name": "target"},
			{"type": "bytes", "name": "payload"},
			{"type": "uint256", "name": "maxSubmissionCost"},
			{"type": "uint256", "name": "gasLimit"},
			{"type": "uint256", "name": "maxFeePerGas"}
		],
		"name": "sendCallToL2",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"type": "address", "name": "to"}],
		"name": "sweep",
		"outputs": [],
		"type": "function"
	}
]`

var relayABI = abiUtils.MustParse(RelayABI)

// pausableABI is the pause fragment of the governed token surface. The relay
// builds its canonical pause and unpause payloads from it so the paused gate
// can compare outbound calls byte for byte.
const pausableABI = `[
	{
		"inputs": [{"type": "bool", "name": "paused"}],
		"name": "setPaused",
		"outputs": [],
		"type": "function"
	}
]`

var (
	pausePayload   = mustPackSetPaused(true)
	unpausePayload = mustPackSetPaused(false)
)

func mustPackSetPaused(paused bool) []byte {
	data, err := abiUtils.MustParse(pausableABI).Pack("setPaused", paused)
	if err != nil {
		panic(err)
	}

	return data
}

// PausePayload returns the canonical calldata the relay sends to pause the L2
// receiver.
func PausePayload() []byte {
	return bytes.Clone(pausePayload)
}

// UnpausePayload returns the canonical calldata that unpauses the L2
// receiver. It is the only payload the relay forwards while paused.
func UnpausePayload() []byte {
	return bytes.Clone(unpausePayload)
}

// PackSendPauseToL2 encodes a sendPauseToL2 call.
func PackSendPauseToL2(target common.Address, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) ([]byte, error) {
	return relayABI.Pack("sendPauseToL2", target, maxSubmissionCost, gasLimit, maxFeePerGas)
}

// PackSendUnpauseToL2 encodes a sendUnpauseToL2 call.
func PackSendUnpauseToL2(target common.Address, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) ([]byte, error) {
	return relayABI.Pack("sendUnpauseToL2", target, maxSubmissionCost, gasLimit, maxFeePerGas)
}

// PackSendCallToL2 encodes a sendCallToL2 call.
func PackSendCallToL2(target common.Address, payload []byte, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) ([]byte, error) {
	return relayABI.Pack("sendCallToL2", target, payload, maxSubmissionCost, gasLimit, maxFeePerGas)
}

// PackPause encodes a pause call.
func PackPause() ([]byte, error) {
	return relayABI.Pack("pause")
}

// PackUnpause encodes an unpause call.
func PackUnpause() ([]byte, error) {
	return relayABI.Pack("unpause")
}

// PackSweep encodes a sweep call.
func PackSweep(to common.Address) ([]byte, error) {
	return relayABI.Pack("sweep", to)
}

// RequiredFunding returns the exact value a message must carry:
// maxSubmissionCost + gasLimit*maxFeePerGas. The arithmetic runs in uint256
// and reports overflow instead of wrapping.
func RequiredFunding(maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) (*big.Int, error) {
	cost, overflow := word(maxSubmissionCost)
	if overflow {
		return nil, ErrFundingOverflow
	}
	gas, overflow := word(gasLimit)
	if overflow {
		return nil, ErrFundingOverflow
	}
	fee, overflow := word(maxFeePerGas)
	if overflow {
		return nil, ErrFundingOverflow
	}

	execution, overflow := new(uint256.Int).MulOverflow(gas, fee)
	if overflow {
		return nil, ErrFundingOverflow
	}
	total, overflow := new(uint256.Int).AddOverflow(cost, execution)
	if overflow {
		return nil, ErrFundingOverflow
	}

	return total.ToBig(), nil
}

func word(v *big.Int) (*uint256.Int, bool) {
	if v == nil {
		return new(uint256.Int), false
	}

	return uint256.FromBig(v)
}

// Relay is the L1 contract governance uses to reach the execution chain. It
// prices each outbound call exactly, refunds any excess in the same
// transaction, and carries a local pause gate that blocks every payload
// except the canonical unpause, so a paused relay can still unstick the far
// side.
type Relay struct {
	owner  common.Address
	inbox  common.Address
	paused bool
}

var (
	_ chain.Contract    = (*Relay)(nil)
	_ chain.Snapshotter = (*Relay)(nil)
)

// NewRelay creates a relay forwarding through the inbox at the given address.
// The owner is fixed for the relay's lifetime; re-pointing governance means
// deploying a new relay and re-linking the receiver.
func NewRelay(owner, inbox common.Address) (*Relay, error) {
	if owner == (common.Address{}) {
		return nil, ErrZeroOwner
	}

	return &Relay{owner: owner, inbox: inbox}, nil
}

// Call dispatches ABI calldata against the relay surface.
func (r *Relay) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(relayABI, input)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "owner":
		return abiUtils.PackResult(method, r.owner)
	case "inbox":
		return abiUtils.PackResult(method, r.inbox)
	case "paused":
		return abiUtils.PackResult(method, r.paused)
	case "pause":
		return nil, r.pause(frame)
	case "unpause":
		return nil, r.unpause(frame)
	case "sendPauseToL2":
		id, serr := r.send(
			frame,
			args[0].(common.Address),
			PausePayload(),
			args[1].(*big.Int),
			args[2].(*big.Int),
			args[3].(*big.Int),
		)
		if serr != nil {
			return nil, serr
		}

		return abiUtils.PackResult(method, id)
	case "sendUnpauseToL2":
		id, serr := r.send(
			frame,
			args[0].(common.Address),
			UnpausePayload(),
			args[1].(*big.Int),
			args[2].(*big.Int),
			args[3].(*big.Int),
		)
		if serr != nil {
			return nil, serr
		}

		return abiUtils.PackResult(method, id)
	case "sendCallToL2":
		id, serr := r.send(
			frame,
			args[0].(common.Address),
			args[1].([]byte),
			args[2].(*big.Int),
			args[3].(*big.Int),
			args[4].(*big.Int),
		)
		if serr != nil {
			return nil, serr
		}

		return abiUtils.PackResult(method, id)
	case "sweep":
		return nil, r.sweep(frame, args[0].(common.Address))
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

// send prices, forwards and refunds one outbound message, returning the
// ticket id the inbox assigned.
func (r *Relay) send(frame *chain.Frame, target common.Address, payload []byte, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) (*big.Int, error) {
	if err := r.checkOwner(frame.Sender()); err != nil {
		return nil, err
	}
	if r.paused && !bytes.Equal(payload, unpausePayload) {
		return nil, ErrRelayPaused
	}

	required, err := RequiredFunding(maxSubmissionCost, gasLimit, maxFeePerGas)
	if err != nil {
		return nil, err
	}
	if frame.Value().Cmp(required) < 0 {
		return nil, NewInsufficientFundingError(frame.Value(), required)
	}

	// Refunds on the far side go back to the caller: unspent gas budget as
	// fee refund, the (always zero) callvalue to the same place.
	calldata, err := PackCreateRetryableTicket(
		target, big.NewInt(0), maxSubmissionCost,
		frame.Sender(), frame.Sender(),
		gasLimit, maxFeePerGas, payload,
	)
	if err != nil {
		return nil, err
	}

	ret, err := frame.Sub(r.inbox, required, calldata)
	if err != nil {
		return nil, fmt.Errorf("ticket creation failed: %w", err)
	}
	out, err := inboxABI.Unpack("createRetryableTicket", ret)
	if err != nil {
		return nil, err
	}
	id := out[0].(*big.Int)

	refund := new(big.Int).Sub(frame.Value(), required)
	if refund.Sign() > 0 {
		if err := frame.Transfer(frame.Sender(), refund); err != nil {
			return nil, NewRefundFailedError(frame.Sender(), refund, err)
		}
	}

	frame.Emit("TicketForwarded",
		"id", id,
		"target", target,
		"required", required,
		"refund", refund,
	)

	return id, nil
}

func (r *Relay) pause(frame *chain.Frame) error {
	if err := r.checkOwner(frame.Sender()); err != nil {
		return err
	}
	if r.paused {
		return ErrAlreadyPaused
	}

	r.paused = true
	frame.Emit("RelayPaused")

	return nil
}

func (r *Relay) unpause(frame *chain.Frame) error {
	if err := r.checkOwner(frame.Sender()); err != nil {
		return err
	}
	if !r.paused {
		return ErrNotPaused
	}

	r.paused = false
	frame.Emit("RelayUnpaused")

	return nil
}

// sweep transfers the relay's whole balance, recovering value stranded by
// callers that funded the relay outside a send.
func (r *Relay) sweep(frame *chain.Frame, to common.Address) error {
	if err := r.checkOwner(frame.Sender()); err != nil {
		return err
	}

	amount := frame.Env().Balance(frame.Self())
	if amount.Sign() > 0 {
		if err := frame.Transfer(to, amount); err != nil {
			return fmt.Errorf("sweep transfer failed: %w", err)
		}
	}

	frame.Emit("Swept", "to", to, "amount", amount)

	return nil
}

func (r *Relay) checkOwner(account common.Address) error {
	if account != r.owner {
		return NewNotOwnerError(account)
	}

	return nil
}

type relayState struct {
	paused bool
}

// Snapshot implements chain.Snapshotter.
func (r *Relay) Snapshot() any {
	return relayState{paused: r.paused}
}

// Restore implements chain.Snapshotter.
func (r *Relay) Restore(snap any) {
	r.paused = snap.(relayState).paused
}
