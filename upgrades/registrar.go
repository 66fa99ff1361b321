package upgrades

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// RegistrarABI is the dispatch surface of the proxy registrar.
const RegistrarABI = `[
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"pendingOwner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"acceptOwnership","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"getProxyImplementation","stateMutability":"view","inputs":[{"name":"proxy","type":"address"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getProxyAdmin","stateMutability":"view","inputs":[{"name":"proxy","type":"address"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"upgrade","stateMutability":"nonpayable","inputs":[{"name":"proxy","type":"address"},{"name":"implementation","type":"address"}],"outputs":[]},
	{"type":"function","name":"upgradeAndCall","stateMutability":"payable","inputs":[{"name":"proxy","type":"address"},{"name":"implementation","type":"address"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"changeProxyAdmin","stateMutability":"nonpayable","inputs":[{"name":"proxy","type":"address"},{"name":"newAdmin","type":"address"}],"outputs":[]}
]`

var registrarABI = abiUtils.MustParse(RegistrarABI)

// PackRegistrarUpgrade encodes an upgrade call for the registrar.
func PackRegistrarUpgrade(proxy, implementation common.Address) ([]byte, error) {
	return registrarABI.Pack("upgrade", proxy, implementation)
}

// PackRegistrarUpgradeAndCall encodes an upgradeAndCall call for the
// registrar.
func PackRegistrarUpgradeAndCall(proxy, implementation common.Address, data []byte) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}

	return registrarABI.Pack("upgradeAndCall", proxy, implementation, data)
}

// PackChangeProxyAdmin encodes a changeProxyAdmin call for the registrar.
func PackChangeProxyAdmin(proxy, newAdmin common.Address) ([]byte, error) {
	return registrarABI.Pack("changeProxyAdmin", proxy, newAdmin)
}

// Registrar administers proxies: it is the address stored in their EIP-1967
// admin slot and the only path to the pointer swap. Mutators are gated on the
// registrar's owner, normally the upgrade authorizer.
type Registrar struct {
	ownable twoStepOwnable
}

var (
	_ chain.Contract    = (*Registrar)(nil)
	_ chain.Snapshotter = (*Registrar)(nil)
)

// NewRegistrar creates a registrar owned by owner.
func NewRegistrar(owner common.Address) *Registrar {
	return &Registrar{ownable: twoStepOwnable{owner: owner}}
}

// Call dispatches ABI-encoded calldata to the registrar.
func (r *Registrar) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(registrarABI, input)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "owner":
		return abiUtils.PackResult(method, r.ownable.owner)
	case "pendingOwner":
		return abiUtils.PackResult(method, r.ownable.pendingOwner)
	case "transferOwnership":
		return nil, r.ownable.transferOwnership(frame, args[0].(common.Address))
	case "acceptOwnership":
		return nil, r.ownable.acceptOwnership(frame)
	case "getProxyImplementation":
		return r.proxyView(frame, method, args[0].(common.Address), "implementation")
	case "getProxyAdmin":
		return r.proxyView(frame, method, args[0].(common.Address), "admin")
	case "upgrade":
		return nil, r.upgrade(frame, args[0].(common.Address), args[1].(common.Address), nil, false)
	case "upgradeAndCall":
		return nil, r.upgrade(frame, args[0].(common.Address), args[1].(common.Address), args[2].([]byte), true)
	case "changeProxyAdmin":
		return nil, r.changeProxyAdmin(frame, args[0].(common.Address), args[1].(common.Address))
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

// proxyView reads one address getter off the proxy's admin surface. The
// nested call runs as the registrar, which the proxy recognizes as its admin.
func (r *Registrar) proxyView(frame *chain.Frame, method *abi.Method, proxy common.Address, getter string) ([]byte, error) {
	calldata, err := proxyABI.Pack(getter)
	if err != nil {
		return nil, err
	}

	ret, err := frame.Sub(proxy, nil, calldata)
	if err != nil {
		return nil, err
	}

	out, err := proxyABI.Unpack(getter, ret)
	if err != nil {
		return nil, err
	}

	return abiUtils.PackResult(method, out[0].(common.Address))
}

// upgrade swaps a proxy's implementation pointer, optionally running an
// initializer through the proxy in the same transaction.
func (r *Registrar) upgrade(frame *chain.Frame, proxy, implementation common.Address, data []byte, andCall bool) error {
	if err := r.ownable.checkOwner(frame.Sender()); err != nil {
		return err
	}

	var calldata []byte
	var err error
	if andCall {
		calldata, err = PackUpgradeToAndCall(implementation, data)
	} else {
		calldata, err = PackUpgradeTo(implementation)
	}
	if err != nil {
		return err
	}

	_, err = frame.Sub(proxy, frame.Value(), calldata)

	return err
}

func (r *Registrar) changeProxyAdmin(frame *chain.Frame, proxy, newAdmin common.Address) error {
	if err := r.ownable.checkOwner(frame.Sender()); err != nil {
		return err
	}

	calldata, err := PackChangeAdmin(newAdmin)
	if err != nil {
		return err
	}

	_, err = frame.Sub(proxy, nil, calldata)

	return err
}

// Snapshot implements chain.Snapshotter.
func (r *Registrar) Snapshot() any {
	state := r.ownable

	return &state
}

// Restore implements chain.Snapshotter.
func (r *Registrar) Restore(snap any) {
	r.ownable = *snap.(*twoStepOwnable)
}
