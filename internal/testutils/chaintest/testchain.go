// Package chaintest holds the chain identities tests run against: an L1
// settlement chain and an L2 execution chain, both EVM-family selectors.
package chaintest

import (
	cselectors "github.com/smartcontractkit/chain-selectors"

	"github.com/bastion-gov/bastion/types"
)

var (
	L1RawSelector = cselectors.ETHEREUM_TESTNET_SEPOLIA.Selector   // 16015286601757825753
	L1Selector    = types.ChainSelector(L1RawSelector)             // 16015286601757825753
	L1EVMID       = cselectors.ETHEREUM_TESTNET_SEPOLIA.EvmChainID // 11155111

	L2RawSelector = cselectors.ETHEREUM_TESTNET_SEPOLIA_ARBITRUM_1.Selector   // 3478487238524512106
	L2Selector    = types.ChainSelector(L2RawSelector)                        // 3478487238524512106
	L2EVMID       = cselectors.ETHEREUM_TESTNET_SEPOLIA_ARBITRUM_1.EvmChainID // 421614

	// TestInvalidChainSelector is a chain selector that doesn't exist.
	TestInvalidChainSelector = types.ChainSelector(0)
)
