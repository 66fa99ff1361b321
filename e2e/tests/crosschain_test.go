//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/crosschain"
	"github.com/bastion-gov/bastion/token"
	"github.com/bastion-gov/bastion/types"
	"github.com/bastion-gov/bastion/upgrades"
)

// CrosschainTestSuite drives governance actions across the bridge: queued
// operations on L1 fund the relay's outbound messages, the bridge delivers
// the resulting tickets, and the L2 receivers authenticate the aliased
// sender.
type CrosschainTestSuite struct {
	GovernanceSuite
}

// fundExecutor credits the queue executor with the value for the given
// number of bridge messages. Value-bearing operations draw on the executor's
// balance when they fire.
func (s *CrosschainTestSuite) fundExecutor(messages int64) {
	total := new(big.Int).Mul(s.requiredFunding(), big.NewInt(messages))
	s.deployment.L1.Fund(s.executor, total)
}

// sendOp builds a queued operation calling the relay with exactly the
// required funding attached.
func (s *CrosschainTestSuite) sendOp(pack func() ([]byte, error)) types.ChainOperation {
	data, err := pack()
	s.Require().NoError(err)

	return s.queueOp(s.deployment.Manifest.L1.Relay, s.requiredFunding(), data)
}

func (s *CrosschainTestSuite) TestPauseAndUnpauseL2Token() {
	l2Token := s.deployment.Manifest.L2.TokenProxy

	s.fundExecutor(2)
	s.runGovernance(s.sendOp(func() ([]byte, error) {
		return crosschain.PackSendPauseToL2(l2Token, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
	}))

	// The ticket is parked on the bridge until someone delivers it.
	s.Require().Equal([]uint64{1}, s.deployment.Bridge.Pending())

	paused, err := s.deployment.L2Token().Paused()
	s.Require().NoError(err)
	s.Require().False(paused)

	id, err := s.deployment.Bridge.DeliverNext()
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), id)

	paused, err = s.deployment.L2Token().Paused()
	s.Require().NoError(err)
	s.Require().True(paused)

	// Retryable delivery is at-least-once; a duplicate pause is a no-op.
	s.Require().NoError(s.deployment.Bridge.Redeliver(1))

	ticket, err := s.deployment.Bridge.Ticket(1)
	s.Require().NoError(err)
	s.Require().Equal(2, ticket.Deliveries)

	paused, err = s.deployment.L2Token().Paused()
	s.Require().NoError(err)
	s.Require().True(paused)

	s.runGovernance(s.sendOp(func() ([]byte, error) {
		return crosschain.PackSendUnpauseToL2(l2Token, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
	}))
	_, err = s.deployment.Bridge.DeliverNext()
	s.Require().NoError(err)

	paused, err = s.deployment.L2Token().Paused()
	s.Require().NoError(err)
	s.Require().False(paused)
}

func (s *CrosschainTestSuite) TestParameterUpdatesDeliverOutOfOrder() {
	l2Token := s.deployment.Manifest.L2.TokenProxy
	treasury := common.HexToAddress("0x00000000000000000000000000000000000000FE")

	setFee, err := token.PackSetFeeBps(100)
	s.Require().NoError(err)
	setTreasury, err := token.PackSetTreasury(treasury)
	s.Require().NoError(err)

	s.fundExecutor(2)
	s.runGovernance(
		s.sendOp(func() ([]byte, error) {
			return crosschain.PackSendCallToL2(l2Token, setFee, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
		}),
		s.sendOp(func() ([]byte, error) {
			return crosschain.PackSendCallToL2(l2Token, setTreasury, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
		}),
	)
	s.Require().Equal([]uint64{1, 2}, s.deployment.Bridge.Pending())

	// The bridge promises nothing about ordering; independent parameter
	// writes land the same either way.
	s.Require().NoError(s.deployment.Bridge.Deliver(2))
	s.Require().NoError(s.deployment.Bridge.Deliver(1))

	feeBps, err := s.deployment.L2Token().FeeBps()
	s.Require().NoError(err)
	s.Require().Equal(uint16(100), feeBps)

	gotTreasury, err := s.deployment.L2Token().Treasury()
	s.Require().NoError(err)
	s.Require().Equal(treasury, gotTreasury)

	s.Require().Empty(s.deployment.Bridge.Pending())
}

func (s *CrosschainTestSuite) TestL2TokenUpgrade() {
	l2 := s.deployment.Manifest.L2
	feeCap := big.NewInt(9_000)

	v2, err := s.deployment.L2.Deploy(s.deployment.Config.Deployer, upgrades.NewLogic(token.ControllerV2{}))
	s.Require().NoError(err)

	initData, err := token.PackInitializeV2(feeCap)
	s.Require().NoError(err)
	upgradeCall, err := upgrades.PackRegistrarUpgradeAndCall(l2.TokenProxy, v2, initData)
	s.Require().NoError(err)

	// The registrar on L2 answers only to the aliased relay, so the swap
	// must arrive as a bridged call.
	s.fundExecutor(1)
	s.runGovernance(s.sendOp(func() ([]byte, error) {
		return crosschain.PackSendCallToL2(l2.Registrar, upgradeCall, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
	}))
	_, err = s.deployment.Bridge.DeliverNext()
	s.Require().NoError(err)

	impl, err := s.deployment.L2Registrar().GetProxyImplementation(l2.TokenProxy)
	s.Require().NoError(err)
	s.Require().Equal(v2, impl)

	version, err := s.deployment.L2Token().Version()
	s.Require().NoError(err)
	s.Require().Equal(uint8(2), version)

	gotCap, err := s.deployment.L2Token().FeeCap()
	s.Require().NoError(err)
	s.Require().Equal(feeCap, gotCap)

	// The settlement-side token is untouched.
	version, err = s.deployment.L1Token().Version()
	s.Require().NoError(err)
	s.Require().Equal(uint8(1), version)
}

func (s *CrosschainTestSuite) TestPausedRelayOnlySendsUnpause() {
	ctx := context.Background()
	l2Token := s.deployment.Manifest.L2.TokenProxy

	pause, err := crosschain.PackPause()
	s.Require().NoError(err)

	s.fundExecutor(2)

	// Pause the relay and try to push another pause through it in the same
	// proposal; the second leg must hit the relay's gate.
	proposal := s.timelockProposal(
		s.queueOp(s.deployment.Manifest.L1.Relay, big.NewInt(0), pause),
		s.sendOp(func() ([]byte, error) {
			return crosschain.PackSendPauseToL2(l2Token, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
		}),
	)
	s.scheduleThroughWallet(proposal)
	s.deployment.L1.AdvanceTime(s.deployment.Config.QueueDelay)

	executable := s.timelockExecutable(proposal)
	_, err = executable.Execute(ctx, 0)
	s.Require().NoError(err)

	relayPaused, err := s.deployment.Relay().Paused()
	s.Require().NoError(err)
	s.Require().True(relayPaused)

	_, err = executable.Execute(ctx, 1)
	s.Require().ErrorIs(err, crosschain.ErrRelayPaused)
	s.Require().Zero(s.deployment.Bridge.TicketCount())

	// The canonical unpause payload is the one message a paused relay still
	// forwards, so governance can always unstick the far side.
	s.runGovernance(s.sendOp(func() ([]byte, error) {
		return crosschain.PackSendUnpauseToL2(l2Token, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
	}))
	s.Require().Equal(1, s.deployment.Bridge.TicketCount())

	_, err = s.deployment.Bridge.DeliverNext()
	s.Require().NoError(err)

	paused, err := s.deployment.L2Token().Paused()
	s.Require().NoError(err)
	s.Require().False(paused)
}

func (s *CrosschainTestSuite) TestExcessFundingRefundsToQueue() {
	l1 := s.deployment.Manifest.L1
	required := s.requiredFunding()

	// Attach twice the price; the overage must come back to the queue, and
	// the exact price must end up escrowed on the inbox.
	value := new(big.Int).Mul(required, big.NewInt(2))
	s.deployment.L1.Fund(s.executor, value)

	data, err := crosschain.PackSendPauseToL2(s.deployment.Manifest.L2.TokenProxy, maxSubmissionCost, bridgeGasLimit, bridgeMaxFee)
	s.Require().NoError(err)
	s.runGovernance(s.queueOp(l1.Relay, value, data))

	s.Require().Zero(s.deployment.L1.Balance(s.executor).Sign())
	s.Require().Equal(required, s.deployment.L1.Balance(l1.Queue))
	s.Require().Zero(s.deployment.L1.Balance(l1.Relay).Sign())
	s.Require().Equal(required, s.deployment.L1.Balance(l1.Inbox))
}
