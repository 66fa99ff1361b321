package types

// ChainMetadata carries the per-chain deployment context a proposal binds to.
// The wallet address and starting op count participate in the signing hash,
// so a signed proposal cannot be replayed against a different deployment or
// re-run from a different transaction-counter position.
type ChainMetadata struct {
	StartingOpCount uint64 `json:"startingOpCount"`
	WalletAddress   string `json:"walletAddress" validate:"required"`
}
