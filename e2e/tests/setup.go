// Package e2e drives full governance pipelines against a freshly deployed
// two-chain topology: proposals signed by the wallet owners, scheduled and
// executed on the delay queue, and carried to the execution chain over the
// bridge.
package e2e

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"github.com/bastion-gov/bastion"
	"github.com/bastion-gov/bastion/crosschain"
	"github.com/bastion-gov/bastion/deployment"
	"github.com/bastion-gov/bastion/internal/testutils/chaintest"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/sdk/fabric"
	"github.com/bastion-gov/bastion/types"
)

// proposalValidUntil is far enough out that no test clock reaches it.
const proposalValidUntil = uint32(2004259681)

// Retryable ticket pricing used by every cross-chain test. The funding a
// message must carry is maxSubmissionCost + gasLimit*maxFeePerGas.
var (
	maxSubmissionCost = big.NewInt(1_000)
	bridgeGasLimit    = big.NewInt(100_000)
	bridgeMaxFee      = big.NewInt(2)
)

var signerKeyHexes = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
}

// GovernanceSuite deploys a fresh topology per test and drives proposals
// through it. The wallet is 2-of-2 over the suite's signer keys, and the
// queue's executor role is held by a dedicated funded account.
type GovernanceSuite struct {
	suite.Suite

	deployment *deployment.Deployment
	keys       []*ecdsa.PrivateKey
	owners     []common.Address
	executor   common.Address
}

// SetupTest deploys a fresh topology. The in-memory chains are cheap enough
// to rebuild per test, which keeps every pipeline independent.
func (s *GovernanceSuite) SetupTest() {
	s.keys = make([]*ecdsa.PrivateKey, 0, len(signerKeyHexes))
	s.owners = make([]common.Address, 0, len(signerKeyHexes))
	for _, hex := range signerKeyHexes {
		key, err := crypto.HexToECDSA(hex)
		s.Require().NoError(err)

		s.keys = append(s.keys, key)
		s.owners = append(s.owners, crypto.PubkeyToAddress(key.PublicKey))
	}

	s.executor = common.HexToAddress("0x00000000000000000000000000000000000000E1")

	d, err := deployment.Deploy(deployment.Config{
		L1Selector:   chaintest.L1Selector,
		L2Selector:   chaintest.L2Selector,
		Deployer:     common.HexToAddress("0x00000000000000000000000000000000000000D1"),
		Owners:       s.owners,
		Threshold:    2,
		QueueDelay:   3600,
		UpgradeDelay: 7200,
		Executor:     s.executor,
		GenesisTime:  1_700_000_000,
	})
	s.Require().NoError(err)

	s.deployment = d
}

// requiredFunding is the exact value a single bridge message costs.
func (s *GovernanceSuite) requiredFunding() *big.Int {
	required, err := crosschain.RequiredFunding(maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
	s.Require().NoError(err)

	return required
}

// queueOp builds an L1 operation for a timelock proposal.
func (s *GovernanceSuite) queueOp(to common.Address, value *big.Int, data []byte) types.ChainOperation {
	return types.ChainOperation{
		ChainSelector: s.deployment.Config.L1Selector,
		Call: types.Call{
			To:    to,
			Value: value,
			Data:  data,
		},
	}
}

// walletOpCount reads the wallet's executed transaction count, which is the
// starting op count the next proposal must declare.
func (s *GovernanceSuite) walletOpCount() uint64 {
	count, err := fabric.NewInspector(s.deployment.L1).GetOpCount(
		context.Background(), s.deployment.Manifest.L1.Wallet.Hex())
	s.Require().NoError(err)

	return count
}

// timelockProposal builds a schedule proposal over the deployed queue with
// the queue's minimum delay.
func (s *GovernanceSuite) timelockProposal(ops ...types.ChainOperation) *bastion.TimelockProposal {
	sel := s.deployment.Config.L1Selector

	builder := bastion.NewTimelockProposalBuilder().
		SetVersion("v1").
		SetValidUntil(proposalValidUntil).
		SetAction(types.TimelockActionSchedule).
		SetDelay(types.NewDuration(time.Duration(s.deployment.Config.QueueDelay) * time.Second)).
		AddChainMetadata(sel, types.ChainMetadata{
			StartingOpCount: s.walletOpCount(),
			WalletAddress:   s.deployment.Manifest.L1.Wallet.Hex(),
		}).
		AddTimelockAddress(sel, s.deployment.Manifest.L1.Queue.Hex())
	for _, op := range ops {
		builder.AddOperation(op)
	}

	proposal, err := builder.Build()
	s.Require().NoError(err)

	return proposal
}

// scheduleThroughWallet converts the proposal, signs it with every owner key,
// authorizes the root, and executes the wrapped schedule calls through the
// wallet so the operations land on the queue.
func (s *GovernanceSuite) scheduleThroughWallet(proposal *bastion.TimelockProposal) {
	ctx := context.Background()
	sel := s.deployment.Config.L1Selector

	converted, _, err := proposal.Convert(ctx, map[types.ChainSelector]sdk.TimelockConverter{
		sel: fabric.NewTimelockConverter(),
	})
	s.Require().NoError(err)

	signable, err := bastion.NewSignable(&converted, map[types.ChainSelector]sdk.Inspector{
		sel: fabric.NewInspector(s.deployment.L1),
	})
	s.Require().NoError(err)

	for _, key := range s.keys {
		_, err = signable.SignAndAppend(bastion.NewPrivateKeySigner(key))
		s.Require().NoError(err)
	}

	quorumMet, err := signable.ValidateSignatures(ctx)
	s.Require().NoError(err)
	s.Require().True(quorumMet)

	executable, err := bastion.NewExecutable(&converted, map[types.ChainSelector]sdk.Executor{
		sel: fabric.NewExecutor(s.deployment.L1, fabric.NewEncoder(sel, uint64(len(converted.Operations)))),
	})
	s.Require().NoError(err)
	s.Require().NoError(executable.AuthorizeRoot(ctx, sel))

	for i := range converted.Operations {
		_, err = executable.Execute(ctx, i)
		s.Require().NoError(err)
	}
}

// timelockExecutable wraps the proposal for execution on the queue as the
// suite's executor account.
func (s *GovernanceSuite) timelockExecutable(proposal *bastion.TimelockProposal) *bastion.TimelockExecutable {
	executable, err := bastion.NewTimelockExecutable(proposal, map[types.ChainSelector]sdk.TimelockExecutor{
		s.deployment.Config.L1Selector: fabric.NewTimelockExecutor(s.deployment.L1, s.executor),
	})
	s.Require().NoError(err)

	return executable
}

// executeOnQueue waits out the queue delay and runs every scheduled
// operation in order.
func (s *GovernanceSuite) executeOnQueue(proposal *bastion.TimelockProposal) {
	ctx := context.Background()

	s.deployment.L1.AdvanceTime(s.deployment.Config.QueueDelay)

	executable := s.timelockExecutable(proposal)
	s.Require().NoError(executable.IsReady(ctx))

	for i := range proposal.Operations {
		_, err := executable.Execute(ctx, i)
		s.Require().NoError(err)
	}
}

// runGovernance drives a full round: build the proposal, push it through the
// wallet, wait out the delay, and execute on the queue.
func (s *GovernanceSuite) runGovernance(ops ...types.ChainOperation) {
	proposal := s.timelockProposal(ops...)
	s.scheduleThroughWallet(proposal)
	s.executeOnQueue(proposal)
}
