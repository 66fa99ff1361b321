//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/timelock"
	"github.com/bastion-gov/bastion/token"
	"github.com/bastion-gov/bastion/upgrades"
)

// UpgradeTestSuite drives token logic upgrades through both governance
// clocks. Scheduling the upgrade on the authorizer takes one full proposal
// round on the delay queue, and executing it takes a second round after the
// upgrade delay has elapsed on top.
type UpgradeTestSuite struct {
	GovernanceSuite
}

var testFeeCap = big.NewInt(5_000)

// deployV2Logic puts the version 2 token logic on L1 so the registrar has
// something to point the proxy at.
func (s *UpgradeTestSuite) deployV2Logic() common.Address {
	addr, err := s.deployment.L1.Deploy(s.deployment.Config.Deployer, upgrades.NewLogic(token.ControllerV2{}))
	s.Require().NoError(err)

	return addr
}

// scheduleTokenUpgrade runs a governance round that schedules the V2 swap on
// the authorizer, and returns the logic address, the init calldata and the
// upgrade id.
func (s *UpgradeTestSuite) scheduleTokenUpgrade() (common.Address, []byte, common.Hash) {
	l1 := s.deployment.Manifest.L1

	v2 := s.deployV2Logic()
	initData, err := token.PackInitializeV2(testFeeCap)
	s.Require().NoError(err)

	id, err := upgrades.HashUpgrade(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	schedule, err := upgrades.PackScheduleUpgradeAndCall(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	s.runGovernance(s.queueOp(l1.Authorizer, big.NewInt(0), schedule))

	pending, err := s.deployment.Authorizer().IsUpgradePending(id)
	s.Require().NoError(err)
	s.Require().True(pending)

	return v2, initData, id
}

func (s *UpgradeTestSuite) TestTokenUpgradeLifecycle() {
	l1 := s.deployment.Manifest.L1
	treasury := common.HexToAddress("0x00000000000000000000000000000000000000FE")

	v2 := s.deployV2Logic()
	initData, err := token.PackInitializeV2(testFeeCap)
	s.Require().NoError(err)
	id, err := upgrades.HashUpgrade(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	setFee, err := token.PackSetFeeBps(250)
	s.Require().NoError(err)
	setTreasury, err := token.PackSetTreasury(treasury)
	s.Require().NoError(err)
	schedule, err := upgrades.PackScheduleUpgradeAndCall(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	// One round sets the fee parameters on the live token and schedules the
	// logic swap on the authorizer.
	s.runGovernance(
		s.queueOp(l1.TokenProxy, big.NewInt(0), setFee),
		s.queueOp(l1.TokenProxy, big.NewInt(0), setTreasury),
		s.queueOp(l1.Authorizer, big.NewInt(0), schedule),
	)

	feeBps, err := s.deployment.L1Token().FeeBps()
	s.Require().NoError(err)
	s.Require().Equal(uint16(250), feeBps)

	ready, err := s.deployment.Authorizer().IsUpgradeReady(id)
	s.Require().NoError(err)
	s.Require().False(ready)

	// The authorizer's clock runs independently of the queue's.
	s.deployment.L1.AdvanceTime(s.deployment.Config.UpgradeDelay)

	ready, err = s.deployment.Authorizer().IsUpgradeReady(id)
	s.Require().NoError(err)
	s.Require().True(ready)

	execute, err := upgrades.PackExecuteUpgradeAndCall(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)
	s.runGovernance(s.queueOp(l1.Authorizer, big.NewInt(0), execute))

	done, err := s.deployment.Authorizer().IsUpgradeDone(id)
	s.Require().NoError(err)
	s.Require().True(done)

	impl, err := s.deployment.Registrar().GetProxyImplementation(l1.TokenProxy)
	s.Require().NoError(err)
	s.Require().Equal(v2, impl)

	version, err := s.deployment.L1Token().Version()
	s.Require().NoError(err)
	s.Require().Equal(uint8(2), version)

	feeCap, err := s.deployment.L1Token().FeeCap()
	s.Require().NoError(err)
	s.Require().Equal(testFeeCap, feeCap)

	// Proxy storage survived the pointer swap.
	feeBps, err = s.deployment.L1Token().FeeBps()
	s.Require().NoError(err)
	s.Require().Equal(uint16(250), feeBps)

	gotTreasury, err := s.deployment.L1Token().Treasury()
	s.Require().NoError(err)
	s.Require().Equal(treasury, gotTreasury)
}

func (s *UpgradeTestSuite) TestExecuteWaitsForUpgradeDelay() {
	ctx := context.Background()
	l1 := s.deployment.Manifest.L1

	v2, initData, _ := s.scheduleTokenUpgrade()

	execute, err := upgrades.PackExecuteUpgradeAndCall(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	// Ride the queue a second time, but only the queue delay has elapsed
	// when the executor fires; the authorizer still holds the swap back.
	proposal := s.timelockProposal(s.queueOp(l1.Authorizer, big.NewInt(0), execute))
	s.scheduleThroughWallet(proposal)
	s.deployment.L1.AdvanceTime(s.deployment.Config.QueueDelay)

	executable := s.timelockExecutable(proposal)
	_, err = executable.Execute(ctx, 0)
	s.Require().Error(err)

	var notReady *upgrades.UpgradeNotReadyError
	s.Require().ErrorAs(err, &notReady)

	version, err := s.deployment.L1Token().Version()
	s.Require().NoError(err)
	s.Require().Equal(uint8(1), version)

	// Once both clocks have elapsed the same queued operation goes through.
	s.deployment.L1.AdvanceTime(s.deployment.Config.UpgradeDelay)
	_, err = executable.Execute(ctx, 0)
	s.Require().NoError(err)

	version, err = s.deployment.L1Token().Version()
	s.Require().NoError(err)
	s.Require().Equal(uint8(2), version)
}

func (s *UpgradeTestSuite) TestExecuteUpgradeOnlyOnce() {
	ctx := context.Background()
	l1 := s.deployment.Manifest.L1

	v2, initData, id := s.scheduleTokenUpgrade()
	s.deployment.L1.AdvanceTime(s.deployment.Config.UpgradeDelay)

	execute, err := upgrades.PackExecuteUpgradeAndCall(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	// Two identical execute legs in one proposal: the first consumes the
	// request, the second must not re-run the initializer.
	proposal := s.timelockProposal(
		s.queueOp(l1.Authorizer, big.NewInt(0), execute),
		s.queueOp(l1.Authorizer, big.NewInt(0), execute),
	)
	s.scheduleThroughWallet(proposal)
	s.deployment.L1.AdvanceTime(s.deployment.Config.QueueDelay)

	executable := s.timelockExecutable(proposal)
	_, err = executable.Execute(ctx, 0)
	s.Require().NoError(err)

	_, err = executable.Execute(ctx, 1)
	s.Require().Error(err)

	var inner *timelock.InnerCallFailedError
	s.Require().ErrorAs(err, &inner)
	var alreadyDone *upgrades.UpgradeAlreadyDoneError
	s.Require().ErrorAs(err, &alreadyDone)
	s.Require().Equal(id, alreadyDone.ID)

	version, err := s.deployment.L1Token().Version()
	s.Require().NoError(err)
	s.Require().Equal(uint8(2), version)
}

func (s *UpgradeTestSuite) TestCancelScheduledUpgrade() {
	ctx := context.Background()
	l1 := s.deployment.Manifest.L1

	v2, initData, id := s.scheduleTokenUpgrade()

	cancel, err := upgrades.PackCancelUpgrade(id)
	s.Require().NoError(err)
	s.runGovernance(s.queueOp(l1.Authorizer, big.NewInt(0), cancel))

	pending, err := s.deployment.Authorizer().IsUpgradePending(id)
	s.Require().NoError(err)
	s.Require().False(pending)

	ts, err := s.deployment.Authorizer().GetTimestamp(id)
	s.Require().NoError(err)
	s.Require().Zero(ts.Sign())

	// A cancelled request never becomes executable, no matter how long the
	// clocks run.
	s.deployment.L1.AdvanceTime(s.deployment.Config.UpgradeDelay)

	execute, err := upgrades.PackExecuteUpgradeAndCall(l1.Registrar, l1.TokenProxy, v2, initData)
	s.Require().NoError(err)

	proposal := s.timelockProposal(s.queueOp(l1.Authorizer, big.NewInt(0), execute))
	s.scheduleThroughWallet(proposal)
	s.deployment.L1.AdvanceTime(s.deployment.Config.QueueDelay)

	_, err = s.timelockExecutable(proposal).Execute(ctx, 0)
	s.Require().Error(err)

	var notReady *upgrades.UpgradeNotReadyError
	s.Require().ErrorAs(err, &notReady)

	impl, err := s.deployment.Registrar().GetProxyImplementation(l1.TokenProxy)
	s.Require().NoError(err)
	s.Require().Equal(l1.TokenLogic, impl)
}
