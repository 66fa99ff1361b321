//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/sdk/fabric"
	"github.com/bastion-gov/bastion/token"
)

// InspectionTestSuite reads the deployed topology back through the fabric
// inspectors, checking that what governance sees matches what Deploy wired.
type InspectionTestSuite struct {
	GovernanceSuite
}

func (s *InspectionTestSuite) TestGetConfig() {
	ctx := context.Background()

	config, err := fabric.NewInspector(s.deployment.L1).GetConfig(ctx, s.deployment.Manifest.L1.Wallet.Hex())
	s.Require().NoError(err)
	s.Require().Equal(uint8(2), config.Threshold)
	s.Require().Equal(s.owners, config.Owners)
}

func (s *InspectionTestSuite) TestGetOpCountAdvancesWithProposals() {
	s.Require().Zero(s.walletOpCount())

	setFee, err := token.PackSetFeeBps(50)
	s.Require().NoError(err)
	s.runGovernance(s.queueOp(s.deployment.Manifest.L1.TokenProxy, big.NewInt(0), setFee))

	// One operation wraps into one wallet transaction.
	s.Require().Equal(uint64(1), s.walletOpCount())
}

func (s *InspectionTestSuite) TestTimelockRoles() {
	ctx := context.Background()
	queueAddr := s.deployment.Manifest.L1.Queue.Hex()
	inspector := fabric.NewTimelockInspector(s.deployment.L1)

	proposers, err := inspector.GetProposers(ctx, queueAddr)
	s.Require().NoError(err)
	s.Require().Equal([]common.Address{s.deployment.Manifest.L1.Wallet}, proposers)

	cancellers, err := inspector.GetCancellers(ctx, queueAddr)
	s.Require().NoError(err)
	s.Require().Equal([]common.Address{s.deployment.Manifest.L1.Wallet}, cancellers)

	executors, err := inspector.GetExecutors(ctx, queueAddr)
	s.Require().NoError(err)
	s.Require().Equal([]common.Address{s.executor}, executors)
}

func (s *InspectionTestSuite) TestGetMinDelay() {
	ctx := context.Background()

	minDelay, err := fabric.NewTimelockInspector(s.deployment.L1).GetMinDelay(ctx, s.deployment.Manifest.L1.Queue.Hex())
	s.Require().NoError(err)
	s.Require().Equal(s.deployment.Config.QueueDelay, minDelay)
}

func (s *InspectionTestSuite) TestOperationStateProgression() {
	ctx := context.Background()
	queueAddr := s.deployment.Manifest.L1.Queue.Hex()
	inspector := fabric.NewTimelockInspector(s.deployment.L1)

	setFee, err := token.PackSetFeeBps(75)
	s.Require().NoError(err)

	proposal := s.timelockProposal(s.queueOp(s.deployment.Manifest.L1.TokenProxy, big.NewInt(0), setFee))
	executable := s.timelockExecutable(proposal)

	opID, err := executable.GetOpID(ctx, 0)
	s.Require().NoError(err)

	known, err := inspector.IsOperation(ctx, queueAddr, opID)
	s.Require().NoError(err)
	s.Require().False(known)

	s.scheduleThroughWallet(proposal)

	known, err = inspector.IsOperation(ctx, queueAddr, opID)
	s.Require().NoError(err)
	s.Require().True(known)

	pending, err := inspector.IsOperationPending(ctx, queueAddr, opID)
	s.Require().NoError(err)
	s.Require().True(pending)

	ready, err := inspector.IsOperationReady(ctx, queueAddr, opID)
	s.Require().NoError(err)
	s.Require().False(ready)

	s.deployment.L1.AdvanceTime(s.deployment.Config.QueueDelay)

	ready, err = inspector.IsOperationReady(ctx, queueAddr, opID)
	s.Require().NoError(err)
	s.Require().True(ready)

	_, err = executable.Execute(ctx, 0)
	s.Require().NoError(err)

	done, err := inspector.IsOperationDone(ctx, queueAddr, opID)
	s.Require().NoError(err)
	s.Require().True(done)
}
