package timelock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/types"
)

// Binding is a typed client over a deployed controller. State-changing
// methods run as transactions from the given sender; views run from the zero
// address.
type Binding struct {
	env     *chain.Env
	address common.Address
}

// NewBinding binds a controller address on an env.
func NewBinding(env *chain.Env, address common.Address) *Binding {
	return &Binding{env: env, address: address}
}

// Address returns the bound controller address.
func (b *Binding) Address() common.Address {
	return b.address
}

// Schedule queues an operation with the given delay in seconds.
func (b *Binding) Schedule(from, target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash, delay *big.Int) error {
	calldata, err := PackSchedule(target, value, data, predecessor, salt, delay)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, nil, calldata)

	return err
}

// Execute runs a ready operation. pay is the native value sent along with
// the transaction; the controller forwards the operation's value to the
// target from its own balance.
func (b *Binding) Execute(from common.Address, pay *big.Int, target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash) error {
	calldata, err := PackExecute(target, value, data, predecessor, salt)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, pay, calldata)

	return err
}

// Cancel removes a pending operation.
func (b *Binding) Cancel(from common.Address, id common.Hash) error {
	calldata, err := PackCancel(id)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, nil, calldata)

	return err
}

// GrantRole adds an account to a role.
func (b *Binding) GrantRole(from common.Address, role common.Hash, account common.Address) error {
	calldata, err := PackGrantRole(role, account)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, nil, calldata)

	return err
}

// RevokeRole removes an account from a role.
func (b *Binding) RevokeRole(from common.Address, role common.Hash, account common.Address) error {
	calldata, err := PackRevokeRole(role, account)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, nil, calldata)

	return err
}

// HasRole reports role membership.
func (b *Binding) HasRole(role common.Hash, account common.Address) (bool, error) {
	out, err := b.view("hasRole", role, account)
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

// GetRoleMembers lists a role's holders in address order.
func (b *Binding) GetRoleMembers(role common.Hash) ([]common.Address, error) {
	out, err := b.view("getRoleMembers", role)
	if err != nil {
		return nil, err
	}

	return out[0].([]common.Address), nil
}

// HashOperation asks the controller for an operation id. It must always
// agree with the package level HashOperation.
func (b *Binding) HashOperation(target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash) (common.Hash, error) {
	out, err := b.view("hashOperation", target, value, data, predecessor, salt)
	if err != nil {
		return common.Hash{}, err
	}

	return common.Hash(out[0].([32]byte)), nil
}

// GetTimestamp returns the stored ready timestamp for an operation id.
func (b *Binding) GetTimestamp(id common.Hash) (*big.Int, error) {
	out, err := b.view("getTimestamp", id)
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

// GetMinDelay returns the controller's minimum delay in seconds.
func (b *Binding) GetMinDelay() (*big.Int, error) {
	out, err := b.view("getMinDelay")
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

// IsOperation reports whether the id is known to the controller.
func (b *Binding) IsOperation(id common.Hash) (bool, error) {
	return b.boolView("isOperation", id)
}

// IsOperationPending reports whether the operation still awaits execution.
func (b *Binding) IsOperationPending(id common.Hash) (bool, error) {
	return b.boolView("isOperationPending", id)
}

// IsOperationReady reports whether the operation's delay has elapsed.
func (b *Binding) IsOperationReady(id common.Hash) (bool, error) {
	return b.boolView("isOperationReady", id)
}

// IsOperationDone reports whether the operation has executed.
func (b *Binding) IsOperationDone(id common.Hash) (bool, error) {
	return b.boolView("isOperationDone", id)
}

// OperationState derives the operation's lifecycle state.
func (b *Binding) OperationState(id common.Hash) (types.OperationState, error) {
	ts, err := b.GetTimestamp(id)
	if err != nil {
		return types.OperationStateUnknown, err
	}

	return StateOf(ts.Uint64(), b.env.Now()), nil
}

func (b *Binding) view(name string, args ...any) ([]any, error) {
	calldata, err := controllerABI.Pack(name, args...)
	if err != nil {
		return nil, err
	}

	ret, err := b.env.Call(common.Address{}, b.address, nil, calldata)
	if err != nil {
		return nil, err
	}

	return controllerABI.Unpack(name, ret)
}

func (b *Binding) boolView(name string, id common.Hash) (bool, error) {
	out, err := b.view(name, id)
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}
