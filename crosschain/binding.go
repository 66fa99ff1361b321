package crosschain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
)

// RelayBinding is a typed client over a deployed relay. State-changing
// methods run as transactions from the given sender; views run from the zero
// address.
type RelayBinding struct {
	env     *chain.Env
	address common.Address
}

// NewRelayBinding binds a relay address on an env.
func NewRelayBinding(env *chain.Env, address common.Address) *RelayBinding {
	return &RelayBinding{env: env, address: address}
}

// Address returns the bound relay address.
func (b *RelayBinding) Address() common.Address {
	return b.address
}

// Owner returns the relay owner.
func (b *RelayBinding) Owner() (common.Address, error) {
	out, err := b.view("owner")
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// InboxAddress returns the inbox the relay forwards through.
func (b *RelayBinding) InboxAddress() (common.Address, error) {
	out, err := b.view("inbox")
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// Paused reports the relay's local pause gate.
func (b *RelayBinding) Paused() (bool, error) {
	out, err := b.view("paused")
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

// Pause closes the relay's outbound gate.
func (b *RelayBinding) Pause(from common.Address) error {
	return b.transact(from, nil, "pause")
}

// Unpause reopens the relay's outbound gate.
func (b *RelayBinding) Unpause(from common.Address) error {
	return b.transact(from, nil, "unpause")
}

// SendPauseToL2 sends the canonical pause payload to the target, carrying pay
// as funding.
func (b *RelayBinding) SendPauseToL2(from common.Address, pay *big.Int, target common.Address, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) (*big.Int, error) {
	return b.sendTx(from, pay, "sendPauseToL2", target, maxSubmissionCost, gasLimit, maxFeePerGas)
}

// SendUnpauseToL2 sends the canonical unpause payload to the target.
func (b *RelayBinding) SendUnpauseToL2(from common.Address, pay *big.Int, target common.Address, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) (*big.Int, error) {
	return b.sendTx(from, pay, "sendUnpauseToL2", target, maxSubmissionCost, gasLimit, maxFeePerGas)
}

// SendCallToL2 sends an arbitrary payload to the target.
func (b *RelayBinding) SendCallToL2(from common.Address, pay *big.Int, target common.Address, payload []byte, maxSubmissionCost, gasLimit, maxFeePerGas *big.Int) (*big.Int, error) {
	return b.sendTx(from, pay, "sendCallToL2", target, payload, maxSubmissionCost, gasLimit, maxFeePerGas)
}

// Sweep transfers the relay's whole balance to the given address.
func (b *RelayBinding) Sweep(from, to common.Address) error {
	return b.transact(from, nil, "sweep", to)
}

func (b *RelayBinding) sendTx(from common.Address, pay *big.Int, name string, args ...any) (*big.Int, error) {
	calldata, err := relayABI.Pack(name, args...)
	if err != nil {
		return nil, err
	}
	ret, err := b.env.Call(from, b.address, pay, calldata)
	if err != nil {
		return nil, err
	}
	out, err := relayABI.Unpack(name, ret)
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

func (b *RelayBinding) transact(from common.Address, pay *big.Int, name string, args ...any) error {
	calldata, err := relayABI.Pack(name, args...)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, pay, calldata)

	return err
}

func (b *RelayBinding) view(name string, args ...any) ([]any, error) {
	calldata, err := relayABI.Pack(name, args...)
	if err != nil {
		return nil, err
	}
	ret, err := b.env.Call(common.Address{}, b.address, nil, calldata)
	if err != nil {
		return nil, err
	}

	return relayABI.Unpack(name, ret)
}

// InboxBinding is a typed client over a deployed inbox, used by tests that
// exercise the ticket funding rule directly.
type InboxBinding struct {
	env     *chain.Env
	address common.Address
}

// NewInboxBinding binds an inbox address on an env.
func NewInboxBinding(env *chain.Env, address common.Address) *InboxBinding {
	return &InboxBinding{env: env, address: address}
}

// Address returns the bound inbox address.
func (b *InboxBinding) Address() common.Address {
	return b.address
}

// CreateRetryableTicket escrows pay on the inbox and enqueues a ticket,
// returning its id.
func (b *InboxBinding) CreateRetryableTicket(from common.Address, pay *big.Int, to common.Address, l2CallValue, maxSubmissionCost *big.Int, excessFeeRefundAddress, callValueRefundAddress common.Address, gasLimit, maxFeePerGas *big.Int, data []byte) (uint64, error) {
	calldata, err := PackCreateRetryableTicket(to, l2CallValue, maxSubmissionCost, excessFeeRefundAddress, callValueRefundAddress, gasLimit, maxFeePerGas, data)
	if err != nil {
		return 0, err
	}
	ret, err := b.env.Call(from, b.address, pay, calldata)
	if err != nil {
		return 0, err
	}
	out, err := inboxABI.Unpack("createRetryableTicket", ret)
	if err != nil {
		return 0, err
	}

	return out[0].(*big.Int).Uint64(), nil
}
