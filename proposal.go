package bastion

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/bastion-gov/bastion/internal/core/merkle"
	"github.com/bastion-gov/bastion/internal/utils/safecast"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

// BaseProposal carries the fields shared by all proposal kinds.
type BaseProposal struct {
	Version       string                                      `json:"version" validate:"required"`
	Kind          types.ProposalKind                          `json:"kind" validate:"required"`
	ValidUntil    uint32                                      `json:"validUntil" validate:"required"`
	Signatures    []types.Signature                           `json:"signatures" validate:"omitempty,dive,required"`
	ChainMetadata map[types.ChainSelector]types.ChainMetadata `json:"chainMetadata" validate:"required,min=1"`
	Description   string                                      `json:"description"`
}

// Proposal authorizes a set of operations to run directly through the quorum
// wallets named in its chain metadata. Each operation consumes one wallet
// transaction, so there is no batching below the operation level.
type Proposal struct {
	BaseProposal

	Operations []types.ChainOperation `json:"operations" validate:"required,min=1,dive"`
}

// NewProposal decodes a proposal from JSON and validates it.
func NewProposal(reader io.Reader) (*Proposal, error) {
	var out Proposal
	if err := json.NewDecoder(reader).Decode(&out); err != nil {
		return nil, err
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	return &out, nil
}

// WriteProposal validates the proposal and writes it to the writer as
// indented JSON.
func WriteProposal(w io.Writer, proposal *Proposal) error {
	if err := proposal.Validate(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(proposal)
}

// MarshalJSON marshals the proposal to JSON.
func (m *Proposal) MarshalJSON() ([]byte, error) {
	// First, check the proposal is valid
	if err := m.Validate(); err != nil {
		return nil, err
	}

	// Let the default JSON marshaller handle everything
	type Alias Proposal

	return json.Marshal((*Alias)(m))
}

// UnmarshalJSON unmarshals the JSON to a proposal.
func (m *Proposal) UnmarshalJSON(data []byte) error {
	// Unmarshal all fields using the default unmarshaller
	type Alias Proposal
	if err := json.Unmarshal(data, (*Alias)(m)); err != nil {
		return err
	}

	// Validate the proposal after unmarshalling
	if err := m.Validate(); err != nil {
		return err
	}

	return nil
}

func (m *Proposal) Validate() error {
	// Run tag-based validation
	var validate = validator.New()
	if err := validate.Struct(m); err != nil {
		return err
	}

	if m.Kind != types.KindProposal {
		return NewInvalidProposalKindError(m.Kind, types.KindProposal)
	}

	if err := validateValidUntil(m.ValidUntil); err != nil {
		return err
	}

	// Validate all chains in operations have an entry in chain metadata
	for _, op := range m.Operations {
		if _, ok := m.ChainMetadata[op.ChainSelector]; !ok {
			return NewChainMetadataNotFoundError(op.ChainSelector)
		}
	}

	return nil
}

// ChainSelectors returns a sorted list of chain selectors from the chains' metadata.
func (m *Proposal) ChainSelectors() []types.ChainSelector {
	return slices.Sorted(maps.Keys(m.ChainMetadata))
}

// MerkleTree generates a merkle tree from the proposal's chain metadata and
// operations. The metadata leaf of every chain and one leaf per operation go
// into the tree, so authorizing the root also pins the proposal's exact
// transaction-counter window on each wallet.
func (m *Proposal) MerkleTree() (*merkle.Tree, error) {
	encoders, err := m.GetEncoders()
	if err != nil {
		return nil, wrapTreeGenErr(err)
	}

	hashLeaves := make([]common.Hash, 0, len(m.ChainMetadata)+len(m.Operations))
	for _, sel := range m.ChainSelectors() {
		// Since we create encoders from the list of chain selectors provided in the ChainMetadata,
		// we can be sure the encoder exists, and don't need to check for existence.
		encoder := encoders[sel]

		encodedRootMetadata, encerr := encoder.HashMetadata(m.ChainMetadata[sel])
		if encerr != nil {
			return nil, wrapTreeGenErr(encerr)
		}

		hashLeaves = append(hashLeaves, encodedRootMetadata)
	}

	txNonces, err := m.TransactionNonces()
	if err != nil {
		return nil, wrapTreeGenErr(err)
	}

	for i, op := range m.Operations {
		// This will always exist since encoders are created from the chain selectors in the
		// metadata, and TransactionNonces has validated that the metadata exists for each chain
		// selector defined in the operations.
		encoder := encoders[op.ChainSelector]

		encodedOp, operr := encoder.HashOperation(
			txNonces[i],
			m.ChainMetadata[op.ChainSelector],
			op,
		)
		if operr != nil {
			return nil, wrapTreeGenErr(operr)
		}
		hashLeaves = append(hashLeaves, encodedOp)
	}

	// sort the hashes and sort the pairs
	slices.SortFunc(hashLeaves, func(a, b common.Hash) int {
		return strings.Compare(a.String(), b.String())
	})

	return merkle.NewTree(hashLeaves), nil
}

// SigningHash returns the EIP-191 digest signers commit to: the merkle root
// bound to the proposal's expiry.
func (m *Proposal) SigningHash() (common.Hash, error) {
	tree, err := m.MerkleTree()
	if err != nil {
		return common.Hash{}, err
	}

	return sdk.RootSigningHash(tree.Root, m.ValidUntil), nil
}

// TransactionCounts returns a map of chain selectors to the number of wallet
// transactions the proposal drives on that chain.
func (m *Proposal) TransactionCounts() map[types.ChainSelector]uint64 {
	txCounts := make(map[types.ChainSelector]uint64)
	for _, op := range m.Operations {
		txCounts[op.ChainSelector]++
	}

	return txCounts
}

// TransactionNonces calculates and returns a slice of nonces for each
// operation based on their respective chain selectors and associated
// metadata.
//
// It returns a slice of nonces, where each nonce corresponds to an operation
// in the same order as the operations slice. The nonce is calculated as the
// local index of the operation with respect to its chain selector, plus the
// starting op count for that chain selector.
func (m *Proposal) TransactionNonces() ([]uint64, error) {
	// Map to keep track of local index counts for each ChainSelector
	chainIndexMap := make(map[types.ChainSelector]uint64, len(m.ChainMetadata))

	txNonces := make([]uint64, len(m.Operations))
	for i, op := range m.Operations {
		// Get the current local index for this ChainSelector
		localIndex := chainIndexMap[op.ChainSelector]

		// Lookup the StartingOpCount for this ChainSelector
		md, ok := m.ChainMetadata[op.ChainSelector]
		if !ok {
			return nil, NewChainMetadataNotFoundError(op.ChainSelector)
		}

		// Add the local index to the StartingOpCount to get the final nonce
		txNonces[i] = localIndex + md.StartingOpCount

		// Increment the local index for the current ChainSelector
		chainIndexMap[op.ChainSelector]++
	}

	return txNonces, nil
}

// AppendSignature appends a signature to the proposal's signature list.
func (m *Proposal) AppendSignature(signature types.Signature) {
	m.Signatures = append(m.Signatures, signature)
}

// GetEncoders generates encoders for each chain in the proposal's chain metadata.
func (m *Proposal) GetEncoders() (map[types.ChainSelector]sdk.Encoder, error) {
	txCounts := m.TransactionCounts()
	encoders := make(map[types.ChainSelector]sdk.Encoder)
	for chainSelector := range m.ChainMetadata {
		encoder, err := newEncoder(chainSelector, txCounts[chainSelector])
		if err != nil {
			return nil, fmt.Errorf("unable to create encoder: %w", err)
		}

		encoders[chainSelector] = encoder
	}

	return encoders, nil
}

// validateValidUntil checks that the expiry is still in the future.
func validateValidUntil(validUntil uint32) error {
	now, err := safecast.Int64ToUint32(time.Now().Unix())
	if err != nil {
		return err
	}

	if validUntil <= now {
		return NewInvalidValidUntilError(validUntil)
	}

	return nil
}

// wrapTreeGenErr wraps an error with a message indicating that it occurred during
// merkle tree generation.
func wrapTreeGenErr(err error) error {
	return fmt.Errorf("merkle tree generation error: %w", err)
}
