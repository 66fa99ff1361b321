// Package fabric implements the chain driver interfaces over in-memory chain
// fabric environments, so proposals can be inspected, simulated and executed
// end to end without a live network.
//
// Artifact facing contract addresses stay hex strings and are parsed at the
// driver boundary; everything past it works in common.Address.
package fabric

import (
	cselectors "github.com/smartcontractkit/chain-selectors"

	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

// evmChainID resolves the EVM chain id behind a selector.
func evmChainID(sel types.ChainSelector) (uint64, error) {
	detail, exists := cselectors.ChainBySelector(uint64(sel))
	if !exists {
		return 0, sdk.NewInvalidChainIDError(sel)
	}

	return detail.EvmChainID, nil
}
