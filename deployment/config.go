// Package deployment assembles a full bastion topology: the L1 governance
// stack (quorum wallet, delay queue, upgrade authorizer, proxy registrar,
// token proxy, relay and bridge inbox) and the L2 side it governs (token
// proxy behind a registrar owned by the aliased relay). The wiring and the
// resulting manifest are the single source of truth for who owns what.
package deployment

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/bastion-gov/bastion/types"
)

// Config carries the deployment parameters. The zero Executor grants the
// queue's executor role to the zero address, which opens execution to
// anyone.
type Config struct {
	L1Selector types.ChainSelector `json:"l1Selector" validate:"required"`
	L2Selector types.ChainSelector `json:"l2Selector" validate:"required,nefield=L1Selector"`

	Deployer  common.Address   `json:"deployer" validate:"required"`
	Owners    []common.Address `json:"owners" validate:"required,min=1,unique"`
	Threshold uint8            `json:"threshold" validate:"required"`

	// QueueDelay and UpgradeDelay are the two delay clocks, in seconds.
	QueueDelay   uint64 `json:"queueDelay" validate:"required"`
	UpgradeDelay uint64 `json:"upgradeDelay" validate:"required"`

	Executor common.Address `json:"executor"`

	// GenesisTime sets the starting timestamp of both chains. Zero keeps
	// the envs' default.
	GenesisTime uint64 `json:"genesisTime"`
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()

	return validate.Struct(c)
}
