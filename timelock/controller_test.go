package timelock

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/internal/testutils/chaintest"
)

const (
	genesisTime = uint64(1_700_000_000)
	minDelay    = uint64(3600)
)

var (
	deployer  = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	admin     = common.HexToAddress("0x0000000000000000000000000000000000000A10")
	proposer  = common.HexToAddress("0x0000000000000000000000000000000000000A11")
	executor  = common.HexToAddress("0x0000000000000000000000000000000000000A12")
	canceller = common.HexToAddress("0x0000000000000000000000000000000000000A13")
	stranger  = common.HexToAddress("0x0000000000000000000000000000000000000A14")
)

var errTargetFail = errors.New("target: forced failure")

// recorder is the execution target used across tests. It records every call
// and can be armed to fail.
type recorder struct {
	calls []recordedCall
	fail  bool
}

type recordedCall struct {
	sender common.Address
	value  *big.Int
	data   []byte
}

func (r *recorder) Call(frame *chain.Frame, input []byte) ([]byte, error) {
	r.calls = append(r.calls, recordedCall{
		sender: frame.Sender(),
		value:  frame.Value(),
		data:   append([]byte(nil), input...),
	})
	if r.fail {
		return nil, errTargetFail
	}

	return nil, nil
}

func (r *recorder) Snapshot() any { return len(r.calls) }

func (r *recorder) Restore(snap any) { r.calls = r.calls[:snap.(int)] }

type fixture struct {
	env     *chain.Env
	ctl     *Controller
	bnd     *Binding
	rec     *recorder
	recAddr common.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	env := chain.NewEnv(chaintest.L1Selector, chain.WithGenesisTime(genesisTime))

	ctl := NewController(minDelay, admin)
	addr, err := env.Deploy(deployer, ctl)
	require.NoError(t, err)

	bnd := NewBinding(env, addr)
	require.NoError(t, bnd.GrantRole(admin, RoleProposer, proposer))
	require.NoError(t, bnd.GrantRole(admin, RoleExecutor, executor))
	require.NoError(t, bnd.GrantRole(admin, RoleCanceller, canceller))

	rec := &recorder{}
	recAddr, err := env.Deploy(deployer, rec)
	require.NoError(t, err)

	return &fixture{env: env, ctl: ctl, bnd: bnd, rec: rec, recAddr: recAddr}
}

func (f *fixture) schedule(t *testing.T, salt common.Hash) common.Hash {
	t.Helper()

	err := f.bnd.Schedule(proposer, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, salt, big.NewInt(int64(minDelay)))
	require.NoError(t, err)

	id, err := HashOperation(f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, salt)
	require.NoError(t, err)

	return id
}

func Test_Controller_Schedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sender  common.Address
		delay   *big.Int
		repeat  bool
		wantErr string
	}{
		{
			name:   "success: proposer schedules at minimum delay",
			sender: proposer,
			delay:  big.NewInt(int64(minDelay)),
		},
		{
			name:   "success: proposer schedules above minimum delay",
			sender: proposer,
			delay:  big.NewInt(int64(minDelay) * 4),
		},
		{
			name:    "failure: delay below minimum",
			sender:  proposer,
			delay:   big.NewInt(int64(minDelay) - 1),
			wantErr: "below the minimum delay",
		},
		{
			name:    "failure: delay does not fit the clock",
			sender:  proposer,
			delay:   new(big.Int).Lsh(big.NewInt(1), 70),
			wantErr: "does not fit the chain clock",
		},
		{
			name:    "failure: non-proposer",
			sender:  stranger,
			delay:   big.NewInt(int64(minDelay)),
			wantErr: "missing role PROPOSER_ROLE",
		},
		{
			name:    "failure: duplicate operation",
			sender:  proposer,
			delay:   big.NewInt(int64(minDelay)),
			repeat:  true,
			wantErr: "already scheduled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			salt := common.HexToHash("0x5a17")

			run := func() error {
				return f.bnd.Schedule(tt.sender, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, salt, tt.delay)
			}

			if tt.repeat {
				require.NoError(t, run())
			}

			err := run()

			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)

				id, herr := HashOperation(f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, salt)
				require.NoError(t, herr)

				ts, terr := f.bnd.GetTimestamp(id)
				require.NoError(t, terr)
				assert.Equal(t, new(big.Int).Add(new(big.Int).SetUint64(genesisTime), tt.delay), ts)
			}
		})
	}
}

func Test_Controller_OperationLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.schedule(t, common.HexToHash("0x01"))

	// Scheduled, not yet ready.
	pending, err := f.bnd.IsOperationPending(id)
	require.NoError(t, err)
	assert.True(t, pending)

	ready, err := f.bnd.IsOperationReady(id)
	require.NoError(t, err)
	assert.False(t, ready)

	// Ready once the delay elapses.
	f.env.AdvanceTime(minDelay)
	ready, err = f.bnd.IsOperationReady(id)
	require.NoError(t, err)
	assert.True(t, ready)

	// Execute and observe the terminal state.
	err = f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))
	require.NoError(t, err)

	done, err := f.bnd.IsOperationDone(id)
	require.NoError(t, err)
	assert.True(t, done)

	ts, err := f.bnd.GetTimestamp(id)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).SetUint64(DoneTimestamp), ts)

	require.Len(t, f.rec.calls, 1)
	assert.Equal(t, f.bnd.Address(), f.rec.calls[0].sender, "inner call runs as the controller")
}

func Test_Controller_Execute_Failures(t *testing.T) {
	t.Parallel()

	t.Run("failure: too early", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.schedule(t, common.HexToHash("0x01"))
		f.env.AdvanceTime(minDelay - 1)

		err := f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))

		var notReady *OperationNotReadyError
		require.ErrorAs(t, err, &notReady)
		assert.Empty(t, f.rec.calls)
	})

	t.Run("failure: unknown operation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		err := f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0xff}, common.Hash{}, common.HexToHash("0x01"))

		var notReady *OperationNotReadyError
		require.ErrorAs(t, err, &notReady)
	})

	t.Run("failure: executing twice", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.schedule(t, common.HexToHash("0x01"))
		f.env.AdvanceTime(minDelay)

		require.NoError(t, f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01")))

		err := f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))

		var notReady *OperationNotReadyError
		require.ErrorAs(t, err, &notReady)
		assert.Len(t, f.rec.calls, 1, "redundant execution must not re-run the call")
	})

	t.Run("failure: non-executor while role is closed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.schedule(t, common.HexToHash("0x01"))
		f.env.AdvanceTime(minDelay)

		err := f.bnd.Execute(stranger, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))
		require.ErrorContains(t, err, "missing role EXECUTOR_ROLE")
	})

	t.Run("failure: inner call failure reverts the whole execute", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		id := f.schedule(t, common.HexToHash("0x01"))
		f.env.AdvanceTime(minDelay)
		f.rec.fail = true

		err := f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))

		var innerErr *InnerCallFailedError
		require.ErrorAs(t, err, &innerErr)
		require.ErrorIs(t, err, errTargetFail)

		// Still ready, not done: the operation may be retried.
		ready, rerr := f.bnd.IsOperationReady(id)
		require.NoError(t, rerr)
		assert.True(t, ready)
		assert.Empty(t, f.rec.calls, "failed inner call must roll back")

		// Retry succeeds once the target is fixed.
		f.rec.fail = false
		require.NoError(t, f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01")))

		done, derr := f.bnd.IsOperationDone(id)
		require.NoError(t, derr)
		assert.True(t, done)
	})
}

func Test_Controller_Execute_OpenExecutor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.bnd.GrantRole(admin, RoleExecutor, OpenExecutor))

	f.schedule(t, common.HexToHash("0x01"))
	f.env.AdvanceTime(minDelay)

	err := f.bnd.Execute(stranger, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))
	require.NoError(t, err, "open executor role admits any caller")
	assert.Len(t, f.rec.calls, 1)
}

func Test_Controller_Execute_Predecessors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	firstID := f.schedule(t, common.HexToHash("0x01"))

	// Second operation requires the first to be done.
	err := f.bnd.Schedule(proposer, f.recAddr, big.NewInt(0), []byte{0x02}, firstID, common.HexToHash("0x02"), big.NewInt(int64(minDelay)))
	require.NoError(t, err)

	f.env.AdvanceTime(minDelay)

	err = f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x02}, firstID, common.HexToHash("0x02"))
	var predErr *PredecessorNotDoneError
	require.ErrorAs(t, err, &predErr)
	assert.Equal(t, firstID, predErr.Predecessor)

	require.NoError(t, f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01")))
	require.NoError(t, f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x02}, firstID, common.HexToHash("0x02")))

	require.Len(t, f.rec.calls, 2)
}

func Test_Controller_Execute_ForwardsValue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.env.Fund(executor, big.NewInt(500))

	err := f.bnd.Schedule(proposer, f.recAddr, big.NewInt(500), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"), big.NewInt(int64(minDelay)))
	require.NoError(t, err)
	f.env.AdvanceTime(minDelay)

	err = f.bnd.Execute(executor, big.NewInt(500), f.recAddr, big.NewInt(500), []byte{0x01}, common.Hash{}, common.HexToHash("0x01"))
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(500), f.env.Balance(f.recAddr))
	assert.Equal(t, big.NewInt(0), f.env.Balance(f.bnd.Address()))
	require.Len(t, f.rec.calls, 1)
	assert.Equal(t, big.NewInt(500), f.rec.calls[0].value)
}

func Test_Controller_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("success: canceller cancels a pending operation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		id := f.schedule(t, common.HexToHash("0x01"))

		require.NoError(t, f.bnd.Cancel(canceller, id))

		known, err := f.bnd.IsOperation(id)
		require.NoError(t, err)
		assert.False(t, known, "cancelled operation is unknown again")

		// The same operation can be scheduled anew.
		f.schedule(t, common.HexToHash("0x01"))
	})

	t.Run("failure: non-canceller", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		id := f.schedule(t, common.HexToHash("0x01"))

		err := f.bnd.Cancel(stranger, id)
		require.ErrorContains(t, err, "missing role CANCELLER_ROLE")
	})

	t.Run("failure: cancelling a done operation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		id := f.schedule(t, common.HexToHash("0x01"))
		f.env.AdvanceTime(minDelay)
		require.NoError(t, f.bnd.Execute(executor, nil, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x01")))

		err := f.bnd.Cancel(canceller, id)

		var notPending *OperationNotPendingError
		require.ErrorAs(t, err, &notPending)
	})

	t.Run("failure: cancelling an unknown operation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		err := f.bnd.Cancel(canceller, common.HexToHash("0xdead"))

		var notPending *OperationNotPendingError
		require.ErrorAs(t, err, &notPending)
	})
}

func Test_Controller_UpdateDelay(t *testing.T) {
	t.Parallel()

	t.Run("failure: direct call is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		calldata, err := PackUpdateDelay(big.NewInt(7200))
		require.NoError(t, err)

		_, err = f.env.Call(admin, f.bnd.Address(), nil, calldata)

		var unauthorized *UnauthorizedCallerError
		require.ErrorAs(t, err, &unauthorized)
	})

	t.Run("success: applied through a scheduled self-call", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		calldata, err := PackUpdateDelay(big.NewInt(7200))
		require.NoError(t, err)

		salt := common.HexToHash("0x01")
		require.NoError(t, f.bnd.Schedule(proposer, f.bnd.Address(), big.NewInt(0), calldata, common.Hash{}, salt, big.NewInt(int64(minDelay))))
		f.env.AdvanceTime(minDelay)
		require.NoError(t, f.bnd.Execute(executor, nil, f.bnd.Address(), big.NewInt(0), calldata, common.Hash{}, salt))

		got, err := f.bnd.GetMinDelay()
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(7200), got)

		// The new minimum gates future schedules.
		err = f.bnd.Schedule(proposer, f.recAddr, big.NewInt(0), []byte{0x01}, common.Hash{}, common.HexToHash("0x02"), big.NewInt(int64(minDelay)))
		require.ErrorContains(t, err, "below the minimum delay")
	})
}

func Test_Controller_Roles(t *testing.T) {
	t.Parallel()

	t.Run("success: admin grants and revokes", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		require.NoError(t, f.bnd.GrantRole(admin, RoleProposer, stranger))
		has, err := f.bnd.HasRole(RoleProposer, stranger)
		require.NoError(t, err)
		assert.True(t, has)

		require.NoError(t, f.bnd.RevokeRole(admin, RoleProposer, stranger))
		has, err = f.bnd.HasRole(RoleProposer, stranger)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("success: members are listed in address order", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		require.NoError(t, f.bnd.GrantRole(admin, RoleProposer, stranger))

		members, err := f.bnd.GetRoleMembers(RoleProposer)
		require.NoError(t, err)
		assert.Equal(t, []common.Address{proposer, stranger}, members)

		members, err = f.bnd.GetRoleMembers(common.HexToHash("0xdead"))
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("success: role change through a scheduled self-call", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		calldata, err := PackGrantRole(RoleProposer, stranger)
		require.NoError(t, err)

		salt := common.HexToHash("0x01")
		require.NoError(t, f.bnd.Schedule(proposer, f.bnd.Address(), big.NewInt(0), calldata, common.Hash{}, salt, big.NewInt(int64(minDelay))))
		f.env.AdvanceTime(minDelay)
		require.NoError(t, f.bnd.Execute(executor, nil, f.bnd.Address(), big.NewInt(0), calldata, common.Hash{}, salt))

		has, err := f.bnd.HasRole(RoleProposer, stranger)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("failure: non-admin cannot grant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		err := f.bnd.GrantRole(stranger, RoleProposer, stranger)
		require.ErrorContains(t, err, "missing role ADMIN_ROLE")
	})
}

func Test_Binding_HashOperation_MatchesLocal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	local, err := HashOperation(f.recAddr, big.NewInt(33), []byte{0xaa, 0xbb}, common.HexToHash("0x07"), common.HexToHash("0x08"))
	require.NoError(t, err)

	remote, err := f.bnd.HashOperation(f.recAddr, big.NewInt(33), []byte{0xaa, 0xbb}, common.HexToHash("0x07"), common.HexToHash("0x08"))
	require.NoError(t, err)

	assert.Equal(t, local, remote)
}
