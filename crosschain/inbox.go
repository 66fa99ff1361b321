package crosschain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// InboxABI is the bridge's L1 entry point.
const InboxABI = `[
	{
		"inputs": [
			{"type": "address", "name": "to"},
			{"type": "uint256", "name": "l2CallValue"},
			{"type": "uint256", "name": "maxSubmissionCost"},
			{"type": "address", "name": "excessFeeRefundAddress"},
			{"type": "address", "name": "callValueRefundAddress"},
			{"type": "uint256", "name": "gasLimit"},
			{"type": "uint256", "name": "maxFeePerGas"},
			{"type": "bytes", "name": "data"}
		],
		"name": "createRetryableTicket",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "payable",
		"type": "function"
	}
]`

var inboxABI = abiUtils.MustParse(InboxABI)

// PackCreateRetryableTicket encodes a createRetryableTicket call.
func PackCreateRetryableTicket(to common.Address, l2CallValue, maxSubmissionCost *big.Int, excessFeeRefundAddress, callValueRefundAddress common.Address, gasLimit, maxFeePerGas *big.Int, data []byte) ([]byte, error) {
	return inboxABI.Pack("createRetryableTicket",
		to, l2CallValue, maxSubmissionCost,
		excessFeeRefundAddress, callValueRefundAddress,
		gasLimit, maxFeePerGas, data,
	)
}

// Inbox is the L1 contract that turns funded calls into bridge tickets. The
// escrowed value stays on the inbox; the ticket records the budget it covers.
type Inbox struct {
	bridge *Bridge
}

var (
	_ chain.Contract    = (*Inbox)(nil)
	_ chain.Snapshotter = (*Inbox)(nil)
)

// NewInbox creates an inbox enqueueing onto the given bridge.
func NewInbox(bridge *Bridge) *Inbox {
	return &Inbox{bridge: bridge}
}

// Call dispatches ABI calldata against the inbox surface.
func (i *Inbox) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(inboxABI, input)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "createRetryableTicket":
		id, cerr := i.createRetryableTicket(
			frame,
			args[0].(common.Address),
			args[1].(*big.Int),
			args[2].(*big.Int),
			args[3].(common.Address),
			args[4].(common.Address),
			args[5].(*big.Int),
			args[6].(*big.Int),
			args[7].([]byte),
		)
		if cerr != nil {
			return nil, cerr
		}

		return abiUtils.PackResult(method, new(big.Int).SetUint64(id))
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

func (i *Inbox) createRetryableTicket(frame *chain.Frame, to common.Address, l2CallValue, maxSubmissionCost *big.Int, excessFeeRefundAddress, callValueRefundAddress common.Address, gasLimit, maxFeePerGas *big.Int, data []byte) (uint64, error) {
	execution, err := RequiredFunding(maxSubmissionCost, gasLimit, maxFeePerGas)
	if err != nil {
		return 0, err
	}
	required := new(big.Int).Add(l2CallValue, execution)
	if frame.Value().Cmp(required) < 0 {
		return 0, NewInsufficientTicketValueError(frame.Value(), required)
	}

	id := i.bridge.enqueue(Ticket{
		From:            frame.Sender(),
		To:              to,
		L2CallValue:     new(big.Int).Set(l2CallValue),
		SubmissionCost:  new(big.Int).Set(maxSubmissionCost),
		GasLimit:        new(big.Int).Set(gasLimit),
		MaxFeePerGas:    new(big.Int).Set(maxFeePerGas),
		ExcessFeeRefund: excessFeeRefundAddress,
		Beneficiary:     callValueRefundAddress,
		Data:            data,
	})

	frame.Emit("InboxMessageDelivered",
		"id", id,
		"from", frame.Sender(),
		"to", to,
		"l2CallValue", l2CallValue,
		"value", frame.Value(),
	)

	return id, nil
}

// Snapshot implements chain.Snapshotter. The bridge queue is the inbox's only
// mutable state and the inbox is its only in-transaction writer, so a queue
// mark is a full snapshot.
func (i *Inbox) Snapshot() any {
	return i.bridge.mark()
}

// Restore implements chain.Snapshotter.
func (i *Inbox) Restore(snap any) {
	i.bridge.rewind(snap.(queueMark))
}
