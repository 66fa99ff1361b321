package bastion

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/internal/core/merkle"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/types"
)

var (
	ErrInspectorsNotProvided = errors.New("inspectors not provided")
	ErrSimulatorsNotProvided = errors.New("simulators not provided")
)

// Signable provides signing functionality for a Proposal. It contains the
// proposal itself, a merkle tree representation of the proposal and encoders
// for the chains it spans, while the inspectors are used for retrieving
// wallet configurations and operation counts on chain.
type Signable struct {
	proposal   *Proposal
	tree       *merkle.Tree
	txNonces   []uint64
	encoders   map[types.ChainSelector]sdk.Encoder
	inspectors map[types.ChainSelector]sdk.Inspector
	simulators map[types.ChainSelector]sdk.Simulator
}

// NewSignable creates a new Signable from a proposal and inspectors, and
// initializes the encoders and merkle tree.
func NewSignable(
	proposal *Proposal,
	inspectors map[types.ChainSelector]sdk.Inspector,
) (*Signable, error) {
	encoders, err := proposal.GetEncoders()
	if err != nil {
		return nil, err
	}

	tree, err := proposal.MerkleTree()
	if err != nil {
		return nil, err
	}

	// Generate the tx nonces from the proposal
	txNonces, err := proposal.TransactionNonces()
	if err != nil {
		return nil, err
	}

	return &Signable{
		proposal:   proposal,
		tree:       tree,
		encoders:   encoders,
		inspectors: inspectors,
		txNonces:   txNonces,
	}, nil
}

// SetSimulators provides the simulators used by Simulate. Chains without a
// simulator fail simulation with an error.
func (s *Signable) SetSimulators(simulators map[types.ChainSelector]sdk.Simulator) {
	s.simulators = simulators
}

// Sign signs the root of the proposal's merkle tree with the provided signer.
func (s *Signable) Sign(signer signer) (sig types.Signature, err error) {
	// Validate proposal
	if err = s.proposal.Validate(); err != nil {
		return sig, err
	}

	// Get the signing hash
	payload, err := s.proposal.SigningHash()
	if err != nil {
		return sig, err
	}

	// Sign the payload
	sigB, err := signer.Sign(payload.Bytes())
	if err != nil {
		return sig, err
	}

	return types.NewSignatureFromBytes(sigB)
}

// SignAndAppend signs the proposal using the provided signer and appends the
// resulting signature to the proposal's list of signatures.
//
// This function modifies the proposal in place by adding the new signature
// to its Signatures slice.
func (s *Signable) SignAndAppend(signer signer) (types.Signature, error) {
	// Sign the proposal
	sig, err := s.Sign(signer)
	if err != nil {
		return types.Signature{}, err
	}

	// Add the signature to the proposal
	s.proposal.AppendSignature(sig)

	return sig, nil
}

// Simulate dry-runs every operation in the proposal against the current
// chain state. Nothing is committed, so a passing simulation does not burn
// any wallet transactions.
func (s *Signable) Simulate(ctx context.Context) error {
	if s.simulators == nil {
		return ErrSimulatorsNotProvided
	}

	for _, op := range s.proposal.Operations {
		simulator, ok := s.simulators[op.ChainSelector]
		if !ok {
			return fmt.Errorf("simulator not found for chain %d", op.ChainSelector)
		}

		if err := simulator.SimulateOperation(ctx, s.proposal.ChainMetadata[op.ChainSelector], op); err != nil {
			return err
		}
	}

	return nil
}

// GetConfigs retrieves the wallet configurations for each chain in the proposal.
func (s *Signable) GetConfigs(ctx context.Context) (map[types.ChainSelector]*types.WalletConfig, error) {
	if s.inspectors == nil {
		return nil, ErrInspectorsNotProvided
	}

	configs := make(map[types.ChainSelector]*types.WalletConfig)
	for chain, metadata := range s.proposal.ChainMetadata {
		inspector, ok := s.inspectors[chain]
		if !ok {
			return nil, fmt.Errorf("inspector not found for chain %d", chain)
		}

		configuration, err := inspector.GetConfig(ctx, metadata.WalletAddress)
		if err != nil {
			return nil, err
		}

		configs[chain] = configuration
	}

	return configs, nil
}

// GetOpCounts returns the current operation counts for the wallet on each
// chain in the proposal. This data is fetched from the contract on the chain
// using the provided inspectors.
func (s *Signable) GetOpCounts(ctx context.Context) (map[types.ChainSelector]uint64, error) {
	if s.inspectors == nil {
		return nil, ErrInspectorsNotProvided
	}

	opCounts := make(map[types.ChainSelector]uint64)
	for sel, metadata := range s.proposal.ChainMetadata {
		inspector, ok := s.inspectors[sel]
		if !ok {
			return nil, fmt.Errorf("inspector not found for chain %d", sel)
		}

		opCount, err := inspector.GetOpCount(ctx, metadata.WalletAddress)
		if err != nil {
			return nil, err
		}

		opCounts[sel] = opCount
	}

	return opCounts, nil
}

// CheckQuorum checks if the quorum for the proposal on the given chain has
// been reached. This fetches the current wallet configuration for the chain
// and checks whether the signers recovered from the proposal's signatures
// could drive a transaction through the wallet.
func (s *Signable) CheckQuorum(ctx context.Context, chain types.ChainSelector) (bool, error) {
	if s.inspectors == nil {
		return false, ErrInspectorsNotProvided
	}

	inspector, ok := s.inspectors[chain]
	if !ok {
		return false, fmt.Errorf("inspector not found for chain %d", chain)
	}

	hash, err := s.proposal.SigningHash()
	if err != nil {
		return false, err
	}

	recoveredSigners := make([]common.Address, len(s.proposal.Signatures))
	for i, sig := range s.proposal.Signatures {
		recoveredAddr, rerr := sig.Recover(hash)
		if rerr != nil {
			return false, rerr
		}

		recoveredSigners[i] = recoveredAddr
	}

	configuration, err := inspector.GetConfig(ctx, s.proposal.ChainMetadata[chain].WalletAddress)
	if err != nil {
		return false, err
	}

	for _, signer := range recoveredSigners {
		if !slices.Contains(configuration.Owners, signer) {
			return false, NewInvalidSignatureError(signer)
		}
	}

	return configuration.CanExecute(recoveredSigners)
}

// ValidateSignatures checks if the quorum for the proposal has been reached
// on the wallets across all chains in the proposal.
func (s *Signable) ValidateSignatures(ctx context.Context) (bool, error) {
	for chain := range s.proposal.ChainMetadata {
		checkQuorum, err := s.CheckQuorum(ctx, chain)
		if err != nil {
			return false, err
		}

		if !checkQuorum {
			return false, NewQuorumNotReachedError(chain)
		}
	}

	return true, nil
}

// ValidateConfigs checks the wallet configurations for each chain in the
// proposal for consistency.
//
// We expect that the configurations for each chain are the same so that the
// same quorum can be reached across all chains in the proposal.
func (s *Signable) ValidateConfigs(ctx context.Context) error {
	configs, err := s.GetConfigs(ctx)
	if err != nil {
		return err
	}

	selectors := s.proposal.ChainSelectors()
	for i, sel := range selectors {
		if i == 0 {
			continue
		}

		if !configs[sel].Equals(configs[selectors[i-1]]) {
			return NewInconsistentConfigsError(sel, selectors[i-1])
		}
	}

	return nil
}
