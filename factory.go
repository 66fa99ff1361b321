package bastion

import (
	cselectors "github.com/smartcontractkit/chain-selectors"

	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/sdk/fabric"
	"github.com/bastion-gov/bastion/types"
)

// newEncoder returns a new Encoder that can encode operations and metadata
// for the given chain.
func newEncoder(csel types.ChainSelector, txCount uint64) (sdk.Encoder, error) {
	family, err := types.GetChainSelectorFamily(csel)
	if err != nil {
		return nil, err
	}

	var encoder sdk.Encoder
	switch family {
	case cselectors.FamilyEVM:
		encoder = fabric.NewEncoder(csel, txCount)
	}

	return encoder, nil
}

// newTimelockConverter returns a converter that wraps operations into delay
// queue calls for the given chain.
func newTimelockConverter(csel types.ChainSelector) (sdk.TimelockConverter, error) {
	family, err := types.GetChainSelectorFamily(csel)
	if err != nil {
		return nil, err
	}

	var converter sdk.TimelockConverter
	switch family {
	case cselectors.FamilyEVM:
		converter = fabric.NewTimelockConverter()
	}

	return converter, nil
}
