package fabric

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/quorum"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

var _ sdk.Inspector = (*Inspector)(nil)

// Inspector reads quorum wallet state out of a fabric environment.
type Inspector struct {
	env *chain.Env
}

// NewInspector creates a new Inspector over env.
func NewInspector(env *chain.Env) *Inspector {
	return &Inspector{env: env}
}

// GetConfig returns the wallet's owner set and approval threshold.
func (i *Inspector) GetConfig(_ context.Context, walletAddress string) (*types.WalletConfig, error) {
	wallet := quorum.NewBinding(i.env, common.HexToAddress(walletAddress))

	owners, err := wallet.Owners()
	if err != nil {
		return nil, err
	}

	threshold, err := wallet.Threshold()
	if err != nil {
		return nil, err
	}

	config, err := types.NewWalletConfig(threshold, owners)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// GetOpCount returns the number of transactions the wallet has accepted.
func (i *Inspector) GetOpCount(_ context.Context, walletAddress string) (uint64, error) {
	return quorum.NewBinding(i.env, common.HexToAddress(walletAddress)).TransactionCount()
}
