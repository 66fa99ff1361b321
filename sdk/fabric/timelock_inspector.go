package fabric

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/timelock"
)

var _ sdk.TimelockInspector = (*TimelockInspector)(nil)

// TimelockInspector reads delay queue state out of a fabric environment.
type TimelockInspector struct {
	env *chain.Env
}

// NewTimelockInspector creates a new TimelockInspector over env.
func NewTimelockInspector(env *chain.Env) *TimelockInspector {
	return &TimelockInspector{env: env}
}

// GetProposers returns the addresses holding the proposer role.
func (t *TimelockInspector) GetProposers(_ context.Context, address string) ([]common.Address, error) {
	return t.binding(address).GetRoleMembers(timelock.RoleProposer)
}

// GetExecutors returns the addresses holding the executor role. The zero
// address among them means execution is open to anyone.
func (t *TimelockInspector) GetExecutors(_ context.Context, address string) ([]common.Address, error) {
	return t.binding(address).GetRoleMembers(timelock.RoleExecutor)
}

// GetCancellers returns the addresses holding the canceller role.
func (t *TimelockInspector) GetCancellers(_ context.Context, address string) ([]common.Address, error) {
	return t.binding(address).GetRoleMembers(timelock.RoleCanceller)
}

// IsOperation reports whether the queue knows the operation.
func (t *TimelockInspector) IsOperation(_ context.Context, address string, opID [32]byte) (bool, error) {
	return t.binding(address).IsOperation(common.Hash(opID))
}

// IsOperationPending reports whether the operation is scheduled or ready but
// not yet done.
func (t *TimelockInspector) IsOperationPending(_ context.Context, address string, opID [32]byte) (bool, error) {
	return t.binding(address).IsOperationPending(common.Hash(opID))
}

// IsOperationReady reports whether the operation's delay has elapsed.
func (t *TimelockInspector) IsOperationReady(_ context.Context, address string, opID [32]byte) (bool, error) {
	return t.binding(address).IsOperationReady(common.Hash(opID))
}

// IsOperationDone reports whether the operation has executed.
func (t *TimelockInspector) IsOperationDone(_ context.Context, address string, opID [32]byte) (bool, error) {
	return t.binding(address).IsOperationDone(common.Hash(opID))
}

// GetMinDelay returns the queue's minimum delay in seconds.
func (t *TimelockInspector) GetMinDelay(_ context.Context, address string) (uint64, error) {
	delay, err := t.binding(address).GetMinDelay()
	if err != nil {
		return 0, err
	}

	return delay.Uint64(), nil
}

func (t *TimelockInspector) binding(address string) *timelock.Binding {
	return timelock.NewBinding(t.env, common.HexToAddress(address))
}
