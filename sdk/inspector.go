package sdk

import (
	"context"

	"github.com/bastion-gov/bastion/types"
)

// Inspector reads the on chain state of a quorum wallet.
type Inspector interface {
	GetConfig(ctx context.Context, walletAddress string) (*types.WalletConfig, error)
	GetOpCount(ctx context.Context, walletAddress string) (uint64, error)
}
