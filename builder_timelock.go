package bastion

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/types"
)

// TimelockProposalBuilder builder for timelock proposals types.
type TimelockProposalBuilder struct {
	BaseProposalBuilder[*TimelockProposalBuilder]
	proposal TimelockProposal
}

// NewTimelockProposalBuilder creates a new TimelockProposalBuilder.
func NewTimelockProposalBuilder() *TimelockProposalBuilder {
	builder := &TimelockProposalBuilder{
		proposal: TimelockProposal{
			BaseProposal: BaseProposal{
				Kind:          types.KindTimelockProposal,
				ChainMetadata: make(map[types.ChainSelector]types.ChainMetadata),
			},
			TimelockAddresses: make(map[types.ChainSelector]string),
			Operations:        []types.ChainOperation{},
		},
	}
	builder.BaseProposalBuilder = BaseProposalBuilder[*TimelockProposalBuilder]{
		baseProposal: &builder.proposal.BaseProposal,
		builder:      builder,
	}

	return builder
}

// SetAction sets the action of the timelock proposal.
func (b *TimelockProposalBuilder) SetAction(action types.TimelockAction) *TimelockProposalBuilder {
	b.proposal.Action = action
	return b
}

// SetDelay sets the delay of the timelock proposal.
func (b *TimelockProposalBuilder) SetDelay(delay types.Duration) *TimelockProposalBuilder {
	b.proposal.Delay = delay
	return b
}

// SetSalt overrides the derived salt of the timelock proposal. Cancel
// proposals use it to target the operation ids of the proposal they cancel.
func (b *TimelockProposalBuilder) SetSalt(salt common.Hash) *TimelockProposalBuilder {
	b.proposal.SaltOverride = &salt
	return b
}

// SetTimelockAddresses sets the timelock addresses of the timelock proposal.
func (b *TimelockProposalBuilder) SetTimelockAddresses(
	addrs map[types.ChainSelector]string,
) *TimelockProposalBuilder {
	b.proposal.TimelockAddresses = addrs
	return b
}

// AddTimelockAddress adds a timelock address for the given selector to the timelock proposal.
func (b *TimelockProposalBuilder) AddTimelockAddress(
	selector types.ChainSelector, address string,
) *TimelockProposalBuilder {
	b.proposal.TimelockAddresses[selector] = address
	return b
}

// AddOperation adds an operation to the timelock proposal.
func (b *TimelockProposalBuilder) AddOperation(op types.ChainOperation) *TimelockProposalBuilder {
	b.proposal.Operations = append(b.proposal.Operations, op)

	return b
}

// SetOperations sets all the operations of the proposal.
func (b *TimelockProposalBuilder) SetOperations(ops []types.ChainOperation) *TimelockProposalBuilder {
	b.proposal.Operations = ops

	return b
}

// Build validates and returns the constructed TimelockProposal.
func (b *TimelockProposalBuilder) Build() (*TimelockProposal, error) {
	// Validate the proposal
	if err := b.proposal.Validate(); err != nil {
		return nil, err
	}

	return &b.proposal, nil
}
