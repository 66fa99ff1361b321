package upgrades

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/types"
)

// AuthorizerBinding is a typed client over a deployed authorizer.
type AuthorizerBinding struct {
	env     *chain.Env
	address common.Address
}

// NewAuthorizerBinding binds an authorizer address on an env.
func NewAuthorizerBinding(env *chain.Env, address common.Address) *AuthorizerBinding {
	return &AuthorizerBinding{env: env, address: address}
}

// Address returns the bound authorizer address.
func (b *AuthorizerBinding) Address() common.Address {
	return b.address
}

// TransferOwnership nominates a new owner.
func (b *AuthorizerBinding) TransferOwnership(from, newOwner common.Address) error {
	return b.tx(from, nil, "transferOwnership", newOwner)
}

// AcceptOwnership completes a pending ownership handshake.
func (b *AuthorizerBinding) AcceptOwnership(from common.Address) error {
	return b.tx(from, nil, "acceptOwnership")
}

// Owner returns the current owner.
func (b *AuthorizerBinding) Owner() (common.Address, error) {
	return b.addressView("owner")
}

// PendingOwner returns the nominated owner, or zero when none is pending.
func (b *AuthorizerBinding) PendingOwner() (common.Address, error) {
	return b.addressView("pendingOwner")
}

// UpgradeDelay returns the authorizer's delay in seconds.
func (b *AuthorizerBinding) UpgradeDelay() (*big.Int, error) {
	out, err := b.view("upgradeDelay")
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

// SetUpgradeDelay changes the delay, effective immediately.
func (b *AuthorizerBinding) SetUpgradeDelay(from common.Address, newDelay *big.Int) error {
	return b.tx(from, nil, "setUpgradeDelay", newDelay)
}

// ScheduleUpgrade queues a pointer-swap-only request.
func (b *AuthorizerBinding) ScheduleUpgrade(from, registrar, proxy, implementation common.Address) error {
	return b.tx(from, nil, "scheduleUpgrade", registrar, proxy, implementation)
}

// ScheduleUpgradeAndCall queues a swap-plus-initializer request.
func (b *AuthorizerBinding) ScheduleUpgradeAndCall(from, registrar, proxy, implementation common.Address, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	return b.tx(from, nil, "scheduleUpgradeAndCall", registrar, proxy, implementation, data)
}

// ExecuteUpgrade runs a ready pointer-swap-only request.
func (b *AuthorizerBinding) ExecuteUpgrade(from, registrar, proxy, implementation common.Address) error {
	return b.tx(from, nil, "executeUpgrade", registrar, proxy, implementation)
}

// ExecuteUpgradeAndCall runs a ready swap-plus-initializer request. pay is
// forwarded down to the initializer call.
func (b *AuthorizerBinding) ExecuteUpgradeAndCall(from common.Address, pay *big.Int, registrar, proxy, implementation common.Address, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	return b.tx(from, pay, "executeUpgradeAndCall", registrar, proxy, implementation, data)
}

// CancelUpgrade removes a pending request.
func (b *AuthorizerBinding) CancelUpgrade(from common.Address, id common.Hash) error {
	return b.tx(from, nil, "cancelUpgrade", id)
}

// HashUpgrade asks the authorizer for a request id. It must always agree
// with the package level HashUpgrade.
func (b *AuthorizerBinding) HashUpgrade(registrar, proxy, implementation common.Address, data []byte) (common.Hash, error) {
	if data == nil {
		data = []byte{}
	}

	out, err := b.view("hashUpgrade", registrar, proxy, implementation, data)
	if err != nil {
		return common.Hash{}, err
	}

	return common.Hash(out[0].([32]byte)), nil
}

// GetTimestamp returns the stored ready timestamp for a request id.
func (b *AuthorizerBinding) GetTimestamp(id common.Hash) (*big.Int, error) {
	out, err := b.view("getTimestamp", id)
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

// IsUpgradePending reports whether the request awaits execution.
func (b *AuthorizerBinding) IsUpgradePending(id common.Hash) (bool, error) {
	return b.boolView("isUpgradePending", id)
}

// IsUpgradeReady reports whether the request's delay has elapsed.
func (b *AuthorizerBinding) IsUpgradeReady(id common.Hash) (bool, error) {
	return b.boolView("isUpgradeReady", id)
}

// IsUpgradeDone reports whether the request has executed.
func (b *AuthorizerBinding) IsUpgradeDone(id common.Hash) (bool, error) {
	return b.boolView("isUpgradeDone", id)
}

// UpgradeState derives the request's lifecycle state.
func (b *AuthorizerBinding) UpgradeState(id common.Hash) (types.OperationState, error) {
	ts, err := b.GetTimestamp(id)
	if err != nil {
		return types.OperationStateUnknown, err
	}

	return UpgradeStateOf(ts.Uint64(), b.env.Now()), nil
}

func (b *AuthorizerBinding) tx(from common.Address, pay *big.Int, name string, args ...any) error {
	calldata, err := authorizerABI.Pack(name, args...)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, pay, calldata)

	return err
}

func (b *AuthorizerBinding) view(name string, args ...any) ([]any, error) {
	calldata, err := authorizerABI.Pack(name, args...)
	if err != nil {
		return nil, err
	}

	ret, err := b.env.Call(common.Address{}, b.address, nil, calldata)
	if err != nil {
		return nil, err
	}

	return authorizerABI.Unpack(name, ret)
}

func (b *AuthorizerBinding) boolView(name string, id common.Hash) (bool, error) {
	out, err := b.view(name, id)
	if err != nil {
		return false, err
	}

	return out[0].(bool), nil
}

func (b *AuthorizerBinding) addressView(name string) (common.Address, error) {
	out, err := b.view(name)
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// RegistrarBinding is a typed client over a deployed registrar.
type RegistrarBinding struct {
	env     *chain.Env
	address common.Address
}

// NewRegistrarBinding binds a registrar address on an env.
func NewRegistrarBinding(env *chain.Env, address common.Address) *RegistrarBinding {
	return &RegistrarBinding{env: env, address: address}
}

// Address returns the bound registrar address.
func (b *RegistrarBinding) Address() common.Address {
	return b.address
}

// TransferOwnership nominates a new owner.
func (b *RegistrarBinding) TransferOwnership(from, newOwner common.Address) error {
	return b.tx(from, nil, "transferOwnership", newOwner)
}

// AcceptOwnership completes a pending ownership handshake.
func (b *RegistrarBinding) AcceptOwnership(from common.Address) error {
	return b.tx(from, nil, "acceptOwnership")
}

// Owner returns the current owner.
func (b *RegistrarBinding) Owner() (common.Address, error) {
	return b.addressView("owner")
}

// PendingOwner returns the nominated owner, or zero when none is pending.
func (b *RegistrarBinding) PendingOwner() (common.Address, error) {
	return b.addressView("pendingOwner")
}

// GetProxyImplementation reads the implementation pointer through the proxy's
// admin surface.
func (b *RegistrarBinding) GetProxyImplementation(proxy common.Address) (common.Address, error) {
	out, err := b.view("getProxyImplementation", proxy)
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// GetProxyAdmin reads the admin address through the proxy's admin surface.
func (b *RegistrarBinding) GetProxyAdmin(proxy common.Address) (common.Address, error) {
	out, err := b.view("getProxyAdmin", proxy)
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}

// Upgrade swaps a proxy's implementation pointer.
func (b *RegistrarBinding) Upgrade(from, proxy, implementation common.Address) error {
	return b.tx(from, nil, "upgrade", proxy, implementation)
}

// UpgradeAndCall swaps the pointer and runs an initializer through the proxy
// in the same transaction.
func (b *RegistrarBinding) UpgradeAndCall(from common.Address, pay *big.Int, proxy, implementation common.Address, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	return b.tx(from, pay, "upgradeAndCall", proxy, implementation, data)
}

// ChangeProxyAdmin hands a proxy's admin slot to a new admin.
func (b *RegistrarBinding) ChangeProxyAdmin(from, proxy, newAdmin common.Address) error {
	return b.tx(from, nil, "changeProxyAdmin", proxy, newAdmin)
}

func (b *RegistrarBinding) tx(from common.Address, pay *big.Int, name string, args ...any) error {
	calldata, err := registrarABI.Pack(name, args...)
	if err != nil {
		return err
	}
	_, err = b.env.Call(from, b.address, pay, calldata)

	return err
}

func (b *RegistrarBinding) view(name string, args ...any) ([]any, error) {
	calldata, err := registrarABI.Pack(name, args...)
	if err != nil {
		return nil, err
	}

	ret, err := b.env.Call(common.Address{}, b.address, nil, calldata)
	if err != nil {
		return nil, err
	}

	return registrarABI.Unpack(name, ret)
}

func (b *RegistrarBinding) addressView(name string) (common.Address, error) {
	out, err := b.view(name)
	if err != nil {
		return common.Address{}, err
	}

	return out[0].(common.Address), nil
}
