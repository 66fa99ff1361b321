package upgrades

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// EIP-1967 reserved slots: keccak256 of the namespace string, minus one.
var (
	ImplementationSlot = slotFor("eip1967.proxy.implementation")
	AdminSlot          = slotFor("eip1967.proxy.admin")
)

func slotFor(namespace string) common.Hash {
	h := crypto.Keccak256Hash([]byte(namespace)).Big()

	return common.BigToHash(h.Sub(h, common.Big1))
}

// Storage is the state a proxy holds on behalf of its implementation. Clone
// supports the fabric's snapshot and restore.
type Storage interface {
	Clone() Storage
}

// Implementation is versioned contract logic hosted behind a proxy. A fresh
// proxy starts from InitStorage; an upgrade keeps the existing storage and
// only swaps the logic dispatching against it.
type Implementation interface {
	InitStorage() Storage
	Dispatch(frame *chain.Frame, storage Storage, input []byte) ([]byte, error)
}

// ImplementationProvider is implemented by contracts that host logic at a
// standalone address so proxies can point at it.
type ImplementationProvider interface {
	Implementation() Implementation
}

// Logic hosts an Implementation at its own address. Direct calls are
// rejected; state lives in the proxies that reference it.
type Logic struct {
	impl Implementation
}

// NewLogic wraps an implementation for standalone deployment.
func NewLogic(impl Implementation) *Logic {
	return &Logic{impl: impl}
}

// Call implements chain.Contract.
func (l *Logic) Call(_ *chain.Frame, _ []byte) ([]byte, error) {
	return nil, ErrDirectLogicCall
}

// Implementation implements ImplementationProvider.
func (l *Logic) Implementation() Implementation {
	return l.impl
}

// ProxyABI is the admin surface of the proxy. Any other calldata from a
// non-admin sender is delegated to the implementation.
const ProxyABI = `[
	{"type":"function","name":"upgradeTo","stateMutability":"nonpayable","inputs":[{"name":"newImplementation","type":"address"}],"outputs":[]},
	{"type":"function","name":"upgradeToAndCall","stateMutability":"payable","inputs":[{"name":"newImplementation","type":"address"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"changeAdmin","stateMutability":"nonpayable","inputs":[{"name":"newAdmin","type":"address"}],"outputs":[]},
	{"type":"function","name":"implementation","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"admin","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

var proxyABI = abiUtils.MustParse(ProxyABI)

// PackUpgradeTo encodes an upgradeTo call for a proxy.
func PackUpgradeTo(newImplementation common.Address) ([]byte, error) {
	return proxyABI.Pack("upgradeTo", newImplementation)
}

// PackUpgradeToAndCall encodes an upgradeToAndCall call for a proxy.
func PackUpgradeToAndCall(newImplementation common.Address, data []byte) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}

	return proxyABI.Pack("upgradeToAndCall", newImplementation, data)
}

// PackChangeAdmin encodes a changeAdmin call for a proxy.
func PackChangeAdmin(newAdmin common.Address) ([]byte, error) {
	return proxyABI.Pack("changeAdmin", newAdmin)
}

// Proxy is a transparent proxy: the admin sees only the admin surface, every
// other sender is delegated to the implementation bound to the proxy's
// storage. The implementation and admin addresses live in the EIP-1967 slots.
type Proxy struct {
	implementation common.Address
	admin          common.Address
	storage        Storage
}

var (
	_ chain.Contract      = (*Proxy)(nil)
	_ chain.Snapshotter   = (*Proxy)(nil)
	_ chain.StorageReader = (*Proxy)(nil)
)

// NewProxy creates a proxy pointing at implAddr with fresh storage. The
// implementation must already be resolvable on env.
func NewProxy(env *chain.Env, implAddr, admin common.Address) (*Proxy, error) {
	impl, err := resolveImplementation(env, implAddr)
	if err != nil {
		return nil, err
	}

	return &Proxy{
		implementation: implAddr,
		admin:          admin,
		storage:        impl.InitStorage(),
	}, nil
}

// DeployProxy creates a proxy for implAddr and deploys it on env.
func DeployProxy(env *chain.Env, deployer, implAddr, admin common.Address) (common.Address, error) {
	proxy, err := NewProxy(env, implAddr, admin)
	if err != nil {
		return common.Address{}, err
	}

	return env.Deploy(deployer, proxy)
}

func resolveImplementation(env *chain.Env, addr common.Address) (Implementation, error) {
	c, ok := env.Contract(addr)
	if !ok {
		return nil, NewNotAnImplementationError(addr)
	}

	switch v := c.(type) {
	case ImplementationProvider:
		return v.Implementation(), nil
	case Implementation:
		return v, nil
	default:
		return nil, NewNotAnImplementationError(addr)
	}
}

// Call implements chain.Contract.
func (p *Proxy) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	if frame.Sender() == p.admin {
		return p.adminCall(frame, input)
	}

	return p.delegate(frame, input)
}

func (p *Proxy) adminCall(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(proxyABI, input)
	if err != nil {
		return nil, ErrAdminFallthrough
	}

	switch method.Name {
	case "upgradeTo":
		return nil, p.upgradeTo(frame, args[0].(common.Address))
	case "upgradeToAndCall":
		if err := p.upgradeTo(frame, args[0].(common.Address)); err != nil {
			return nil, err
		}

		// The initializer runs through the proxy against the proxy's
		// storage. Its failure reverts the pointer swap with it.
		if _, err := p.delegate(frame, args[1].([]byte)); err != nil {
			return nil, err
		}

		return nil, nil
	case "changeAdmin":
		newAdmin := args[0].(common.Address)
		if newAdmin == (common.Address{}) {
			return nil, ErrZeroNewAdmin
		}
		previous := p.admin
		p.admin = newAdmin
		frame.Emit("AdminChanged", "previousAdmin", previous, "newAdmin", newAdmin)

		return nil, nil
	case "implementation":
		return abiUtils.PackResult(method, p.implementation)
	case "admin":
		return abiUtils.PackResult(method, p.admin)
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

func (p *Proxy) upgradeTo(frame *chain.Frame, newImplementation common.Address) error {
	if _, err := resolveImplementation(frame.Env(), newImplementation); err != nil {
		return err
	}

	p.implementation = newImplementation
	frame.Emit("Upgraded", "implementation", newImplementation)

	return nil
}

func (p *Proxy) delegate(frame *chain.Frame, input []byte) ([]byte, error) {
	impl, err := resolveImplementation(frame.Env(), p.implementation)
	if err != nil {
		return nil, err
	}

	return impl.Dispatch(frame, p.storage, input)
}

// StorageAt implements chain.StorageReader for the EIP-1967 slots.
func (p *Proxy) StorageAt(slot common.Hash) common.Hash {
	switch slot {
	case ImplementationSlot:
		return common.BytesToHash(p.implementation.Bytes())
	case AdminSlot:
		return common.BytesToHash(p.admin.Bytes())
	default:
		return common.Hash{}
	}
}

type proxyState struct {
	implementation common.Address
	admin          common.Address
	storage        Storage
}

// Snapshot implements chain.Snapshotter.
func (p *Proxy) Snapshot() any {
	return &proxyState{
		implementation: p.implementation,
		admin:          p.admin,
		storage:        p.storage.Clone(),
	}
}

// Restore implements chain.Snapshotter.
func (p *Proxy) Restore(snap any) {
	state := snap.(*proxyState)
	p.implementation = state.implementation
	p.admin = state.admin
	p.storage = state.storage
}
