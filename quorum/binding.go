package quorum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
)

// Transaction is the decoded view of a wallet transaction.
type Transaction struct {
	Target    common.Address
	Value     *big.Int
	Data      []byte
	Executed  bool
	Approvals int
}

// Binding is a typed client over a deployed wallet. State-changing methods
// run as transactions from the given sender; views run from the zero address.
type Binding struct {
	env     *chain.Env
	address common.Address
}

// NewBinding binds a wallet address on an env.
func NewBinding(env *chain.Env, address common.Address) *Binding {
	return &Binding{env: env, address: address}
}

// Address returns the bound wallet address.
func (b *Binding) Address() common.Address {
	return b.address
}

// Propose submits a new transaction and returns its id. The proposer's
// approval is counted immediately.
func (b *Binding) Propose(from, target common.Address, value *big.Int, data []byte) (uint64, error) {
	calldata, err := PackPropose(target, value, data)
	if err != nil {
		return 0, err
	}

	ret, err := b.env.Call(from, b.address, nil, calldata)
	if err != nil {
		return 0, err
	}

	out, err := walletABI.Unpack("propose", ret)
	if err != nil {
		return 0, err
	}

	return out[0].(*big.Int).Uint64(), nil
}

// Approve adds the sender's approval to a pending transaction.
func (b *Binding) Approve(from common.Address, txID uint64) error {
	calldata, err := PackApprove(txID)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, nil, calldata)

	return err
}

// Execute runs a transaction that holds enough approvals. ok reports whether
// the inner call succeeded; a false result leaves the transaction open for a
// retry.
func (b *Binding) Execute(from common.Address, txID uint64) (bool, []byte, error) {
	calldata, err := PackExecute(txID)
	if err != nil {
		return false, nil, err
	}

	ret, err := b.env.Call(from, b.address, nil, calldata)
	if err != nil {
		return false, nil, err
	}

	out, err := walletABI.Unpack("execute", ret)
	if err != nil {
		return false, nil, err
	}

	return out[0].(bool), out[1].([]byte), nil
}

// GetTransaction returns the stored transaction for an id.
func (b *Binding) GetTransaction(txID uint64) (Transaction, error) {
	out, err := b.view("getTransaction", new(big.Int).SetUint64(txID))
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Target:    out[0].(common.Address),
		Value:     out[1].(*big.Int),
		Data:      out[2].([]byte),
		Executed:  out[3].(bool),
		Approvals: int(out[4].(*big.Int).Int64()),
	}, nil
}

// HasApproved reports whether an owner has approved a transaction.
func (b *Binding) HasApproved(txID uint64, owner common.Address) (bool, error) {
	out, err := b.view("hasApproved", new(big.Int).SetUint64(txID), owner)
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

// IsOwner reports whether an account is in the owner set.
func (b *Binding) IsOwner(account common.Address) (bool, error) {
	out, err := b.view("isOwner", account)
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

// Owners returns the owner set.
func (b *Binding) Owners() ([]common.Address, error) {
	out, err := b.view("owners")
	if err != nil {
		return nil, err
	}

	return out[0].([]common.Address), nil
}

// Threshold returns the number of approvals required to execute.
func (b *Binding) Threshold() (uint8, error) {
	out, err := b.view("threshold")
	if err != nil {
		return 0, err
	}

	return uint8(out[0].(*big.Int).Uint64()), nil
}

// TransactionCount returns the number of transactions ever proposed.
func (b *Binding) TransactionCount() (uint64, error) {
	out, err := b.view("transactionCount")
	if err != nil {
		return 0, err
	}

	return out[0].(*big.Int).Uint64(), nil
}

func (b *Binding) view(name string, args ...any) ([]any, error) {
	calldata, err := walletABI.Pack(name, args...)
	if err != nil {
		return nil, err
	}

	ret, err := b.env.Call(common.Address{}, b.address, nil, calldata)
	if err != nil {
		return nil, err
	}

	return walletABI.Unpack(name, ret)
}
