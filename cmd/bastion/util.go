package bastion

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"

	"github.com/bastion-gov/bastion"
	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/deployment"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/sdk/fabric"
	"github.com/bastion-gov/bastion/types"
)

func loadPrivateKey() (*ecdsa.PrivateKey, error) {
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		return nil, err
	}

	pk := os.Getenv("PRIVATE_KEY")
	if pk == "" {
		return nil, errors.New("PRIVATE_KEY not found in .env file")
	}

	return crypto.HexToECDSA(pk)
}

// loadConfig reads and validates a deployment config file.
func loadConfig(path string) (deployment.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return deployment.Config{}, err
	}
	defer file.Close()

	var cfg deployment.Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return deployment.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return deployment.Config{}, err
	}

	return cfg, nil
}

// loadProposal reads a proposal file and decodes it by kind. Exactly one of
// the two returned proposals is non-nil.
func loadProposal(path string) (*bastion.Proposal, *bastion.TimelockProposal, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var head struct {
		Kind types.ProposalKind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, nil, err
	}

	switch head.Kind {
	case types.KindTimelockProposal:
		proposal, err := bastion.NewTimelockProposal(bytes.NewReader(raw))

		return nil, proposal, err
	case types.KindProposal:
		proposal, err := bastion.NewProposal(bytes.NewReader(raw))

		return proposal, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown proposal kind %q", head.Kind)
	}
}

// rehearse materializes the topology described by the config file. Contract
// addresses depend only on deploy order, so a proposal authored against a
// manifest from the same config lines up with the rehearsal deployment.
func rehearse(configPath string) (*deployment.Deployment, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	return deployment.Deploy(cfg)
}

// envFor maps a chain selector to its env in the deployment.
func envFor(d *deployment.Deployment, sel types.ChainSelector) (*chain.Env, error) {
	switch sel {
	case d.Config.L1Selector:
		return d.L1, nil
	case d.Config.L2Selector:
		return d.L2, nil
	default:
		return nil, fmt.Errorf("chain %d is not part of the deployment", sel)
	}
}

// converters returns a timelock converter per chain in the proposal.
func converters(proposal *bastion.TimelockProposal) map[types.ChainSelector]sdk.TimelockConverter {
	out := make(map[types.ChainSelector]sdk.TimelockConverter, len(proposal.ChainMetadata))
	for sel := range proposal.ChainMetadata {
		out[sel] = fabric.NewTimelockConverter()
	}

	return out
}

// inspectors returns an inspector per chain in the proposal, reading from the
// rehearsal deployment.
func inspectors(d *deployment.Deployment, proposal *bastion.Proposal) (map[types.ChainSelector]sdk.Inspector, error) {
	out := make(map[types.ChainSelector]sdk.Inspector, len(proposal.ChainMetadata))
	for sel := range proposal.ChainMetadata {
		env, err := envFor(d, sel)
		if err != nil {
			return nil, err
		}

		out[sel] = fabric.NewInspector(env)
	}

	return out, nil
}

// executors returns an executor per chain in the proposal, writing to the
// rehearsal deployment.
func executors(d *deployment.Deployment, proposal *bastion.Proposal) (map[types.ChainSelector]sdk.Executor, error) {
	counts := proposal.TransactionCounts()

	out := make(map[types.ChainSelector]sdk.Executor, len(proposal.ChainMetadata))
	for sel := range proposal.ChainMetadata {
		env, err := envFor(d, sel)
		if err != nil {
			return nil, err
		}

		out[sel] = fabric.NewExecutor(env, fabric.NewEncoder(sel, counts[sel]))
	}

	return out, nil
}
