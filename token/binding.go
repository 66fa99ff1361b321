package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
)

// Binding is a typed client over a token proxy. State-changing methods run as
// transactions from the given sender; views run from the zero address, which
// the transparent proxy always delegates.
type Binding struct {
	env     *chain.Env
	address common.Address
}

// NewBinding binds a token proxy address on an env.
func NewBinding(env *chain.Env, address common.Address) *Binding {
	return &Binding{env: env, address: address}
}

// Address returns the bound proxy address.
func (b *Binding) Address() common.Address {
	return b.address
}

// Initialize runs the version 1 initializer.
func (b *Binding) Initialize(from, admin common.Address) error {
	return b.transact(from, "initialize", admin)
}

// SetL1Governance links the L1 governance address. The link is write-once.
func (b *Binding) SetL1Governance(from, l1Governance common.Address) error {
	return b.transact(from, "setL1Governance", l1Governance)
}

// L1Governance returns the linked governance address.
func (b *Binding) L1Governance() (common.Address, error) {
	out, err := b.view("l1Governance")
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// SetPaused toggles the pause flag.
func (b *Binding) SetPaused(from common.Address, paused bool) error {
	return b.transact(from, "setPaused", paused)
}

// Paused reports the pause flag.
func (b *Binding) Paused() (bool, error) {
	out, err := b.view("paused")
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

// SetFeeBps updates the fee parameter.
func (b *Binding) SetFeeBps(from common.Address, feeBps uint16) error {
	return b.transact(from, "setFeeBps", feeBps)
}

// FeeBps returns the fee parameter.
func (b *Binding) FeeBps() (uint16, error) {
	out, err := b.view("feeBps")
	if err != nil {
		return 0, err
	}

	return out[0].(uint16), nil
}

// SetTreasury updates the treasury address.
func (b *Binding) SetTreasury(from, treasury common.Address) error {
	return b.transact(from, "setTreasury", treasury)
}

// Treasury returns the treasury address.
func (b *Binding) Treasury() (common.Address, error) {
	out, err := b.view("treasury")
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// SetFeeCap updates the fee cap. Available from version 2.
func (b *Binding) SetFeeCap(from common.Address, feeCap *big.Int) error {
	return b.transact(from, "setFeeCap", feeCap)
}

// FeeCap returns the fee cap. Available from version 2.
func (b *Binding) FeeCap() (*big.Int, error) {
	out, err := b.view("feeCap")
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

// GrantRole adds an account to a role.
func (b *Binding) GrantRole(from common.Address, role common.Hash, account common.Address) error {
	return b.transact(from, "grantRole", role, account)
}

// RevokeRole removes an account from a role.
func (b *Binding) RevokeRole(from common.Address, role common.Hash, account common.Address) error {
	return b.transact(from, "revokeRole", role, account)
}

// HasRole reports role membership.
func (b *Binding) HasRole(role common.Hash, account common.Address) (bool, error) {
	out, err := b.view("hasRole", role, account)
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

// Version returns the storage version.
func (b *Binding) Version() (uint8, error) {
	out, err := b.view("version")
	if err != nil {
		return 0, err
	}

	return out[0].(uint8), nil
}

func (b *Binding) transact(from common.Address, name string, args ...any) error {
	calldata, err := controllerABI.Pack(name, args...)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, nil, calldata)

	return err
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
