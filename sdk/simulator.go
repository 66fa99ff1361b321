package sdk

import (
	"context"

	"github.com/bastion-gov/bastion/types"
)

// Simulator dry runs proposal operations on a chain without committing state.
//
// This is only required if the chain supports simulation.
type Simulator interface {
	SimulateOperation(
		ctx context.Context,
		metadata types.ChainMetadata,
		op types.ChainOperation,
	) error
}
