// Package timelock implements the delay queue: an operation store keyed by
// content hash, gated by role sets, where every call rides out a minimum
// delay between scheduling and execution.
package timelock

import (
	"bytes"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
	"github.com/bastion-gov/bastion/types"
)

// Controller is the delay queue contract. Operations are hashed calls with a
// stored ready timestamp; roles gate who may schedule, execute and cancel.
// Delay changes and role changes apply only through the queue itself or its
// admin, so every configuration change is as auditable as the calls it gates.
type Controller struct {
	minDelay   uint64
	roles      map[common.Hash]map[common.Address]struct{}
	timestamps map[common.Hash]uint64
}

var (
	_ chain.Contract    = (*Controller)(nil)
	_ chain.Snapshotter = (*Controller)(nil)
)

// NewController creates a delay queue with the given minimum delay in
// seconds. The admin may manage roles immediately; operational roles start
// empty and are granted during deployment wiring.
func NewController(minDelay uint64, admin common.Address) *Controller {
	c := &Controller{
		minDelay:   minDelay,
		roles:      make(map[common.Hash]map[common.Address]struct{}),
		timestamps: make(map[common.Hash]uint64),
	}
	c.grantRole(RoleAdmin, admin)

	return c
}

// Call dispatches ABI calldata against the controller surface.
func (c *Controller) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(controllerABI, input)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "schedule":
		return nil, c.schedule(
			frame,
			args[0].(common.Address),
			args[1].(*big.Int),
			args[2].([]byte),
			common.Hash(args[3].([32]byte)),
			common.Hash(args[4].([32]byte)),
			args[5].(*big.Int),
		)
	case "execute":
		return nil, c.execute(
			frame,
			args[0].(common.Address),
			args[1].(*big.Int),
			args[2].([]byte),
			common.Hash(args[3].([32]byte)),
			common.Hash(args[4].([32]byte)),
		)
	case "cancel":
		return nil, c.cancel(frame, common.Hash(args[0].([32]byte)))
	case "updateDelay":
		return nil, c.updateDelay(frame, args[0].(*big.Int))
	case "grantRole":
		return nil, c.grantRoleChecked(frame, common.Hash(args[0].([32]byte)), args[1].(common.Address))
	case "revokeRole":
		return nil, c.revokeRoleChecked(frame, common.Hash(args[0].([32]byte)), args[1].(common.Address))
	case "hasRole":
		return abiUtils.PackResult(method, c.hasRole(common.Hash(args[0].([32]byte)), args[1].(common.Address)))
	case "getRoleMembers":
		return abiUtils.PackResult(method, c.roleMembers(common.Hash(args[0].([32]byte))))
	case "hashOperation":
		id, herr := HashOperation(
			args[0].(common.Address),
			args[1].(*big.Int),
			args[2].([]byte),
			common.Hash(args[3].([32]byte)),
			common.Hash(args[4].([32]byte)),
		)
		if herr != nil {
			return nil, herr
		}

		return abiUtils.PackResult(method, id)
	case "getTimestamp":
		return abiUtils.PackResult(method, new(big.Int).SetUint64(c.timestamps[common.Hash(args[0].([32]byte))]))
	case "getMinDelay":
		return abiUtils.PackResult(method, new(big.Int).SetUint64(c.minDelay))
	case "isOperation":
		return abiUtils.PackResult(method, c.stateOf(frame, args[0]) != types.OperationStateUnknown)
	case "isOperationPending":
		state := c.stateOf(frame, args[0])

		return abiUtils.PackResult(method, state == types.OperationStateScheduled || state == types.OperationStateReady)
	case "isOperationReady":
		return abiUtils.PackResult(method, c.stateOf(frame, args[0]) == types.OperationStateReady)
	case "isOperationDone":
		return abiUtils.PackResult(method, c.stateOf(frame, args[0]) == types.OperationStateDone)
	default:
		return nil, chain.NewUnhandledMethodError(method.Name)
	}
}

func (c *Controller) stateOf(frame *chain.Frame, idArg any) types.OperationState {
	id := common.Hash(idArg.([32]byte))

	return StateOf(c.timestamps[id], frame.Env().Now())
}

func (c *Controller) schedule(frame *chain.Frame, target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash, delay *big.Int) error {
	if err := c.checkRole(RoleProposer, frame.Sender()); err != nil {
		return err
	}

	if !delay.IsUint64() {
		return NewInvalidDelayError(delay)
	}
	if delay.Uint64() < c.minDelay {
		return NewMinDelayNotMetError(delay.Uint64(), c.minDelay)
	}

	id, err := HashOperation(target, value, data, predecessor, salt)
	if err != nil {
		return err
	}
	if c.timestamps[id] != 0 {
		return NewOperationAlreadyScheduledError(id)
	}

	readyAt := frame.Env().Now() + delay.Uint64()
	c.timestamps[id] = readyAt

	frame.Emit("CallScheduled",
		"id", id,
		"target", target,
		"value", value,
		"predecessor", predecessor,
		"salt", salt,
		"readyAt", readyAt,
	)

	return nil
}

func (c *Controller) execute(frame *chain.Frame, target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash) error {
	if err := c.checkRoleOrOpen(RoleExecutor, frame.Sender()); err != nil {
		return err
	}

	id, err := HashOperation(target, value, data, predecessor, salt)
	if err != nil {
		return err
	}

	now := frame.Env().Now()
	if predecessor != (common.Hash{}) && StateOf(c.timestamps[predecessor], now) != types.OperationStateDone {
		return NewPredecessorNotDoneError(id, predecessor)
	}
	if StateOf(c.timestamps[id], now) != types.OperationStateReady {
		return NewOperationNotReadyError(id)
	}

	if _, err := frame.Sub(target, value, data); err != nil {
		return NewInnerCallFailedError(id, err)
	}

	c.timestamps[id] = DoneTimestamp
	frame.Emit("CallExecuted", "id", id, "target", target, "value", value)

	return nil
}

func (c *Controller) cancel(frame *chain.Frame, id common.Hash) error {
	if err := c.checkRole(RoleCanceller, frame.Sender()); err != nil {
		return err
	}

	state := StateOf(c.timestamps[id], frame.Env().Now())
	if state != types.OperationStateScheduled && state != types.OperationStateReady {
		return NewOperationNotPendingError(id)
	}

	delete(c.timestamps, id)
	frame.Emit("Cancelled", "id", id)

	return nil
}

func (c *Controller) updateDelay(frame *chain.Frame, newDelay *big.Int) error {
	// Reachable only through a scheduled self-call, so delay changes ride
	// the same delay they configure.
	if frame.Sender() != frame.Self() {
		return NewUnauthorizedCallerError(frame.Sender())
	}
	if !newDelay.IsUint64() {
		return NewInvalidDelayError(newDelay)
	}

	old := c.minDelay
	c.minDelay = newDelay.Uint64()
	frame.Emit("MinDelayChange", "oldDelay", old, "newDelay", c.minDelay)

	return nil
}

func (c *Controller) grantRoleChecked(frame *chain.Frame, role common.Hash, account common.Address) error {
	if err := c.checkAdminOrSelf(frame); err != nil {
		return err
	}
	if c.grantRole(role, account) {
		frame.Emit("RoleGranted", "role", RoleName(role), "account", account)
	}

	return nil
}

func (c *Controller) revokeRoleChecked(frame *chain.Frame, role common.Hash, account common.Address) error {
	if err := c.checkAdminOrSelf(frame); err != nil {
		return err
	}
	if members, ok := c.roles[role]; ok {
		if _, held := members[account]; held {
			delete(members, account)
			frame.Emit("RoleRevoked", "role", RoleName(role), "account", account)
		}
	}

	return nil
}

func (c *Controller) grantRole(role common.Hash, account common.Address) bool {
	members, ok := c.roles[role]
	if !ok {
		members = make(map[common.Address]struct{})
		c.roles[role] = members
	}
	if _, held := members[account]; held {
		return false
	}
	members[account] = struct{}{}

	return true
}

func (c *Controller) hasRole(role common.Hash, account common.Address) bool {
	_, ok := c.roles[role][account]

	return ok
}

// roleMembers lists a role's holders in address order, so the view is stable
// across calls.
func (c *Controller) roleMembers(role common.Hash) []common.Address {
	members := make([]common.Address, 0, len(c.roles[role]))
	for account := range c.roles[role] {
		members = append(members, account)
	}
	slices.SortFunc(members, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})

	return members
}

func (c *Controller) checkRole(role common.Hash, account common.Address) error {
	if !c.hasRole(role, account) {
		return NewMissingRoleError(role, account)
	}

	return nil
}

// checkRoleOrOpen treats a role held by the zero address as open to anyone.
func (c *Controller) checkRoleOrOpen(role common.Hash, account common.Address) error {
	if c.hasRole(role, OpenExecutor) {
		return nil
	}

	return c.checkRole(role, account)
}

func (c *Controller) checkAdminOrSelf(frame *chain.Frame) error {
	if frame.Sender() == frame.Self() {
		return nil
	}

	return c.checkRole(RoleAdmin, frame.Sender())
}

type controllerState struct {
	minDelay   uint64
	roles      map[common.Hash]map[common.Address]struct{}
	timestamps map[common.Hash]uint64
}

// Snapshot implements chain.Snapshotter.
func (c *Controller) Snapshot() any {
	roles := make(map[common.Hash]map[common.Address]struct{}, len(c.roles))
	for role, members := range c.roles {
		cp := make(map[common.Address]struct{}, len(members))
		for account := range members {
			cp[account] = struct{}{}
		}
		roles[role] = cp
	}

	timestamps := make(map[common.Hash]uint64, len(c.timestamps))
	for id, ts := range c.timestamps {
		timestamps[id] = ts
	}

	return controllerState{minDelay: c.minDelay, roles: roles, timestamps: timestamps}
}

// Restore implements chain.Snapshotter.
func (c *Controller) Restore(snap any) {
	s := snap.(controllerState)
	c.minDelay = s.minDelay
	c.roles = s.roles
	c.timestamps = s.timestamps
}
