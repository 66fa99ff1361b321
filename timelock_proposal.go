package bastion

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

// TimelockProposal authorizes operations that pass through a delay queue
// before reaching their targets. On conversion every operation is wrapped in
// the matching queue call (schedule or cancel) addressed to the chain's
// delay queue, and the wrapped calls become a plain wallet Proposal.
type TimelockProposal struct {
	BaseProposal

	Action            types.TimelockAction           `json:"action" validate:"required,oneof=schedule cancel"`
	Delay             types.Duration                 `json:"delay" validate:"required_if=Action schedule"`
	TimelockAddresses map[types.ChainSelector]string `json:"timelockAddresses" validate:"required,min=1"`
	SaltOverride      *common.Hash                   `json:"salt,omitempty"`
	Operations        []types.ChainOperation         `json:"operations" validate:"required,min=1,dive"`
}

// NewTimelockProposal unmarshals data from the reader to JSON and returns a
// new TimelockProposal.
func NewTimelockProposal(r io.Reader) (*TimelockProposal, error) {
	var p TimelockProposal
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// WriteTimelockProposal validates the proposal and writes it to the writer
// as indented JSON.
func WriteTimelockProposal(w io.Writer, p *TimelockProposal) error {
	if err := p.Validate(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(p)
}

// Salt returns a unique salt for the proposal. Operation ids on the delay
// queue are derived from it, so two proposals scheduling the same call do
// not collide as long as their salts differ.
func (m *TimelockProposal) Salt() common.Hash {
	if m.SaltOverride != nil {
		return *m.SaltOverride
	}

	// If the proposal doesn't have a salt, we create one from the valid
	// until timestamp.
	var salt common.Hash
	binary.BigEndian.PutUint32(salt[:], m.ValidUntil)

	return salt
}

func (m *TimelockProposal) Validate() error {
	// Run tag-based validation
	validate := validator.New()
	if err := validate.Struct(m); err != nil {
		return err
	}

	if m.Kind != types.KindTimelockProposal {
		return NewInvalidProposalKindError(m.Kind, types.KindTimelockProposal)
	}

	if err := validateValidUntil(m.ValidUntil); err != nil {
		return err
	}

	// Validate all chains in operations have chain metadata and a delay
	// queue to go through.
	for _, op := range m.Operations {
		if _, ok := m.ChainMetadata[op.ChainSelector]; !ok {
			return NewChainMetadataNotFoundError(op.ChainSelector)
		}
		if _, ok := m.TimelockAddresses[op.ChainSelector]; !ok {
			return NewTimelockAddressNotFoundError(op.ChainSelector)
		}
	}

	return nil
}

// Convert turns the proposal into a plain wallet Proposal whose operations
// are the delay queue calls, and returns the predecessor id each operation
// was converted with.
//
// Predecessors chain per chain: an operation's predecessor is the previous
// operation scheduled on the same chain, or the zero hash for the first one.
// The queue refuses to execute an operation before its predecessor is done,
// which preserves proposal order even when executors race.
func (m *TimelockProposal) Convert(
	ctx context.Context,
	converters map[types.ChainSelector]sdk.TimelockConverter,
) (Proposal, []common.Hash, error) {
	baseProposal := m.BaseProposal
	baseProposal.Kind = types.KindProposal

	// Copy chain metadata so the converted proposal does not alias ours.
	baseProposal.ChainMetadata = make(map[types.ChainSelector]types.ChainMetadata, len(m.ChainMetadata))
	for chain, metadata := range m.ChainMetadata {
		baseProposal.ChainMetadata[chain] = metadata
	}

	result := Proposal{
		BaseProposal: baseProposal,
	}

	predecessors := make([]common.Hash, len(m.Operations))
	lastOpID := make(map[types.ChainSelector]common.Hash, len(m.ChainMetadata))

	for i, op := range m.Operations {
		converter, ok := converters[op.ChainSelector]
		if !ok {
			return Proposal{}, nil, NewChainMetadataNotFoundError(op.ChainSelector)
		}

		timelockAddress, ok := m.TimelockAddresses[op.ChainSelector]
		if !ok {
			return Proposal{}, nil, NewTimelockAddressNotFoundError(op.ChainSelector)
		}

		predecessors[i] = lastOpID[op.ChainSelector]

		convertedOps, operationID, err := converter.ConvertToChainOperations(
			ctx, op, timelockAddress, m.Delay, m.Action, predecessors[i], m.Salt(),
		)
		if err != nil {
			return Proposal{}, nil, err
		}

		result.Operations = append(result.Operations, convertedOps...)
		lastOpID[op.ChainSelector] = operationID
	}

	return result, predecessors, nil
}
