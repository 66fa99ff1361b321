package fabric

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

var _ sdk.Simulator = (*Simulator)(nil)

// Simulator dry runs proposal operations against cloned fabric state.
type Simulator struct {
	*Encoder
	*Inspector

	env *chain.Env
}

// NewSimulator returns a new Simulator over env.
func NewSimulator(env *chain.Env, encoder *Encoder) *Simulator {
	return &Simulator{
		Encoder:   encoder,
		Inspector: NewInspector(env),
		env:       env,
	}
}

// SimulateOperation runs op with the metadata's wallet as sender and
// discards every state change. The wallet sender mirrors real execution,
// where the inner call is made by the wallet itself, so owner gated targets
// behave as they would on chain.
func (s *Simulator) SimulateOperation(
	_ context.Context,
	metadata types.ChainMetadata,
	op types.ChainOperation,
) error {
	value := op.Value
	if value == nil {
		value = big.NewInt(0)
	}

	_, err := s.env.Simulate(common.HexToAddress(metadata.WalletAddress), op.To, value, op.Data)

	return err
}
