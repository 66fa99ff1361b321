// Package token holds the governed token controller: the upgradeable logic
// behind the token proxies on both chains. Version 1 carries the governance
// link, the pause flag and the fee parameters; version 2 adds a fee cap to
// prove upgrades preserve storage and reinitialize exactly once.
//
// On the execution chain the controller authenticates governance by
// recomputing the bridge alias of its linked L1 address. On the settlement
// chain the same link is burned at deployment so the write-once slot cannot
// be claimed, and the role paths carry the governance authority instead.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/crosschain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
	"github.com/bastion-gov/bastion/upgrades"
)

// MaxFeeBps caps the fee parameter at 100%.
const MaxFeeBps = 10_000

// state is the proxy-held storage of the controller. It survives upgrades
// unchanged; only the logic dispatching against it is swapped.
type state struct {
	version      uint8
	l1Governance common.Address
	paused       bool
	feeBps       uint16
	treasury     common.Address
	feeCap       *big.Int
	roles        map[common.Hash]map[common.Address]struct{}
}

func newState() *state {
	return &state{
		feeCap: new(big.Int),
		roles:  make(map[common.Hash]map[common.Address]struct{}),
	}
}

// Clone implements upgrades.Storage.
func (s *state) Clone() upgrades.Storage {
	roles := make(map[common.Hash]map[common.Address]struct{}, len(s.roles))
	for role, members := range s.roles {
		cp := make(map[common.Address]struct{}, len(members))
		for account := range members {
			cp[account] = struct{}{}
		}
		roles[role] = cp
	}

	return &state{
		version:      s.version,
		l1Governance: s.l1Governance,
		paused:       s.paused,
		feeBps:       s.feeBps,
		treasury:     s.treasury,
		feeCap:       new(big.Int).Set(s.feeCap),
		roles:        roles,
	}
}

// ControllerV1 is the first version of the controller logic.
type ControllerV1 struct{}

var _ upgrades.Implementation = ControllerV1{}

// InitStorage implements upgrades.Implementation.
func (ControllerV1) InitStorage() upgrades.Storage {
	return newState()
}

// Dispatch implements upgrades.Implementation.
func (ControllerV1) Dispatch(frame *chain.Frame, storage upgrades.Storage, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(controllerABI, input)
	if err != nil {
		return nil, err
	}

	return dispatchCommon(frame, storage.(*state), method, args)
}

// dispatchCommon handles the surface shared by every controller version.
func dispatchCommon(frame *chain.Frame, s *state, method *abi.Method, args []any) ([]byte, error) {
	switch method.Name {
	case "initialize":
		return nil, initialize(frame, s, args[0].(common.Address))
	case "setL1Governance":
		return nil, setL1Governance(frame, s, args[0].(common.Address))
	case "setPaused":
		return nil, setPaused(frame, s, args[0].(bool))
	case "setFeeBps":
		return nil, setFeeBps(frame, s, args[0].(uint16))
	case "setTreasury":
		return nil, setTreasury(frame, s, args[0].(common.Address))
	case "grantRole":
		return nil, grantRoleChecked(frame, s, common.Hash(args[0].([32]byte)), args[1].(common.Address))
	case "revokeRole":
		return nil, revokeRoleChecked(frame, s, common.Hash(args[0].([32]byte)), args[1].(common.Address))
	case "hasRole":
		return abiUtils.PackResult(method, s.hasRole(common.Hash(args[0].([32]byte)), args[1].(common.Address)))
	case "version":
		return abiUtils.PackResult(method, s.version)
	case "l1Governance":
		return abiUtils.PackResult(method, s.l1Governance)
	case "paused":
		return abiUtils.PackResult(method, s.paused)
	case "feeBps":
		return abiUtils.PackResult(method, s.feeBps)
	case "treasury":
		return abiUtils.PackResult(method, s.treasury)
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

func initialize(frame *chain.Frame, s *state, admin common.Address) error {
	if s.version != 0 {
		return NewAlreadyInitializedError(s.version)
	}
	if admin == (common.Address{}) {
		return ErrZeroAdmin
	}

	s.version = 1
	s.grantRole(RoleAdmin, admin)
	frame.Emit("Initialized", "version", uint8(1), "admin", admin)

	return nil
}

func setL1Governance(frame *chain.Frame, s *state, addr common.Address) error {
	if addr == (common.Address{}) {
		return ErrZeroGovernance
	}
	if s.l1Governance != (common.Address{}) {
		return NewGovernanceAlreadyLinkedError(s.l1Governance)
	}

	s.l1Governance = addr
	frame.Emit("GovernanceLinked", "l1Governance", addr)

	return nil
}

// setPaused toggles the pause flag. Repeating the current value is a no-op so
// duplicate bridge deliveries never double-apply.
func setPaused(frame *chain.Frame, s *state, paused bool) error {
	if !s.fromAliasedGovernance(frame.Sender()) && !s.hasRole(RolePauser, frame.Sender()) {
		return NewNotAuthorizedError(frame.Sender())
	}
	if s.paused == paused {
		return nil
	}

	s.paused = paused
	frame.Emit("PausedChanged", "paused", paused)

	return nil
}

func setFeeBps(frame *chain.Frame, s *state, feeBps uint16) error {
	if err := s.checkGovernance(frame.Sender()); err != nil {
		return err
	}
	if feeBps > MaxFeeBps {
		return NewInvalidFeeBpsError(feeBps)
	}
	if s.feeBps == feeBps {
		return nil
	}

	old := s.feeBps
	s.feeBps = feeBps
	frame.Emit("FeeBpsChanged", "oldFeeBps", old, "newFeeBps", feeBps)

	return nil
}

func setTreasury(frame *chain.Frame, s *state, treasury common.Address) error {
	if err := s.checkGovernance(frame.Sender()); err != nil {
		return err
	}
	if treasury == (common.Address{}) {
		return ErrZeroTreasury
	}
	if s.treasury == treasury {
		return nil
	}

	old := s.treasury
	s.treasury = treasury
	frame.Emit("TreasuryChanged", "oldTreasury", old, "newTreasury", treasury)

	return nil
}

func grantRoleChecked(frame *chain.Frame, s *state, role common.Hash, account common.Address) error {
	if err := s.checkGovernance(frame.Sender()); err != nil {
		return err
	}
	if s.grantRole(role, account) {
		frame.Emit("RoleGranted", "role", RoleName(role), "account", account)
	}

	return nil
}

func revokeRoleChecked(frame *chain.Frame, s *state, role common.Hash, account common.Address) error {
	if err := s.checkGovernance(frame.Sender()); err != nil {
		return err
	}
	if members, ok := s.roles[role]; ok {
		if _, held := members[account]; held {
			delete(members, account)
			frame.Emit("RoleRevoked", "role", RoleName(role), "account", account)
		}
	}

	return nil
}

// fromAliasedGovernance reports whether sender is the bridge alias of the
// linked governance address. An unlinked controller trusts no alias.
func (s *state) fromAliasedGovernance(sender common.Address) bool {
	if s.l1Governance == (common.Address{}) {
		return false
	}

	return sender == crosschain.Alias(s.l1Governance)
}

// checkGovernance admits the aliased governance and local admins.
func (s *state) checkGovernance(sender common.Address) error {
	if s.fromAliasedGovernance(sender) || s.hasRole(RoleAdmin, sender) {
		return nil
	}

	return NewNotAuthorizedError(sender)
}

func (s *state) grantRole(role common.Hash, account common.Address) bool {
	members, ok := s.roles[role]
	if !ok {
		members = make(map[common.Address]struct{})
		s.roles[role] = members
	}
	if _, held := members[account]; held {
		return false
	}
	members[account] = struct{}{}

	return true
}

func (s *state) hasRole(role common.Hash, account common.Address) bool {
	_, ok := s.roles[role][account]

	return ok
}
