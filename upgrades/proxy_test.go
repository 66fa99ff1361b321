package upgrades

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/internal/testutils/chaintest"
)

const genesisTime = uint64(1_700_000_000)

var (
	deployer   = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	proxyAdmin = common.HexToAddress("0x0000000000000000000000000000000000000E10")
	user       = common.HexToAddress("0x0000000000000000000000000000000000000E11")
	stranger   = common.HexToAddress("0x0000000000000000000000000000000000000E12")
	regOwner   = common.HexToAddress("0x0000000000000000000000000000000000000E13")
	authOwner  = common.HexToAddress("0x0000000000000000000000000000000000000E14")
	nominee    = common.HexToAddress("0x0000000000000000000000000000000000000E15")
)

// The counter doubles speak a one-byte protocol instead of ABI calldata so
// the tests stay focused on the proxy machinery.
var (
	opIncrement = []byte{0x01}
	opRead      = []byte{0x02}
	opMigrate   = []byte{0x03}
)

var (
	errCounterBadOp    = errors.New("counter: unknown op")
	errAlreadyMigrated = errors.New("counter: already migrated")
	errMigrateFail     = errors.New("counter: forced migration failure")
)

// counterStorage is the proxy-held state shared by both counter versions.
type counterStorage struct {
	count    uint64
	migrated bool
}

func (s *counterStorage) Clone() Storage {
	clone := *s

	return &clone
}

// counterV1 steps the count by one per call.
type counterV1 struct{}

func (counterV1) InitStorage() Storage { return &counterStorage{} }

func (counterV1) Dispatch(_ *chain.Frame, storage Storage, input []byte) ([]byte, error) {
	s := storage.(*counterStorage)
	switch {
	case bytes.Equal(input, opIncrement):
		s.count++

		return nil, nil
	case bytes.Equal(input, opRead):
		return binary.BigEndian.AppendUint64(nil, s.count), nil
	default:
		return nil, errCounterBadOp
	}
}

// counterV2 steps by two and adds a one-shot migration that multiplies the
// carried count by ten. The migration can be armed to fail.
type counterV2 struct {
	failMigrate bool
}

func (*counterV2) InitStorage() Storage { return &counterStorage{} }

func (v *counterV2) Dispatch(_ *chain.Frame, storage Storage, input []byte) ([]byte, error) {
	s := storage.(*counterStorage)
	switch {
	case bytes.Equal(input, opIncrement):
		s.count += 2

		return nil, nil
	case bytes.Equal(input, opRead):
		return binary.BigEndian.AppendUint64(nil, s.count), nil
	case bytes.Equal(input, opMigrate):
		if v.failMigrate {
			return nil, errMigrateFail
		}
		if s.migrated {
			return nil, errAlreadyMigrated
		}
		s.migrated = true
		s.count *= 10

		return nil, nil
	default:
		return nil, errCounterBadOp
	}
}

// inlineLogic hosts implementation logic on the contract itself rather than
// behind a Logic wrapper.
type inlineLogic struct {
	counterV1
}

func (inlineLogic) Call(*chain.Frame, []byte) ([]byte, error) {
	return nil, ErrDirectLogicCall
}

// plainContract is callable but hosts no implementation logic.
type plainContract struct{}

func (plainContract) Call(*chain.Frame, []byte) ([]byte, error) { return nil, nil }

type proxyFixture struct {
	env       *chain.Env
	v2        *counterV2
	v1Addr    common.Address
	v2Addr    common.Address
	proxyAddr common.Address
}

func newProxyFixture(t *testing.T) *proxyFixture {
	t.Helper()

	env := chain.NewEnv(chaintest.L1Selector, chain.WithGenesisTime(genesisTime))

	v1Addr, err := env.Deploy(deployer, NewLogic(counterV1{}))
	require.NoError(t, err)

	v2 := &counterV2{}
	v2Addr, err := env.Deploy(deployer, NewLogic(v2))
	require.NoError(t, err)

	proxyAddr, err := DeployProxy(env, deployer, v1Addr, proxyAdmin)
	require.NoError(t, err)

	return &proxyFixture{env: env, v2: v2, v1Addr: v1Addr, v2Addr: v2Addr, proxyAddr: proxyAddr}
}

func (f *proxyFixture) increment(t *testing.T, from common.Address) {
	t.Helper()

	_, err := f.env.Call(from, f.proxyAddr, nil, opIncrement)
	require.NoError(t, err)
}

func (f *proxyFixture) count(t *testing.T) uint64 {
	t.Helper()

	ret, err := f.env.Call(user, f.proxyAddr, nil, opRead)
	require.NoError(t, err)

	return binary.BigEndian.Uint64(ret)
}

// implementationOf reads the EIP-1967 implementation slot off the env.
func implementationOf(env *chain.Env, proxy common.Address) common.Address {
	return common.BytesToAddress(env.StorageAt(proxy, ImplementationSlot).Bytes())
}

func Test_NewProxy(t *testing.T) {
	t.Parallel()

	t.Run("success: implementation behind a logic host", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		proxy, err := NewProxy(f.env, f.v1Addr, proxyAdmin)
		require.NoError(t, err)
		assert.Equal(t, common.BytesToHash(f.v1Addr.Bytes()), proxy.StorageAt(ImplementationSlot))
	})

	t.Run("success: contract that is its own implementation", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		addr, err := f.env.Deploy(deployer, inlineLogic{})
		require.NoError(t, err)

		_, err = NewProxy(f.env, addr, proxyAdmin)
		require.NoError(t, err)
	})

	t.Run("failure: empty address", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)
		empty := common.HexToAddress("0xdead")

		_, err := NewProxy(f.env, empty, proxyAdmin)

		var notImpl *NotAnImplementationError
		require.ErrorAs(t, err, &notImpl)
		assert.Equal(t, empty, notImpl.Address)
	})

	t.Run("failure: contract without implementation logic", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		addr, err := f.env.Deploy(deployer, plainContract{})
		require.NoError(t, err)

		_, err = NewProxy(f.env, addr, proxyAdmin)

		var notImpl *NotAnImplementationError
		require.ErrorAs(t, err, &notImpl)
	})
}

func Test_Proxy_Delegation(t *testing.T) {
	t.Parallel()

	t.Run("success: non-admin calls reach the implementation", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		f.increment(t, user)
		f.increment(t, stranger)

		assert.Equal(t, uint64(2), f.count(t))
	})

	t.Run("success: each proxy carries its own storage", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		otherAddr, err := DeployProxy(f.env, deployer, f.v1Addr, proxyAdmin)
		require.NoError(t, err)

		f.increment(t, user)
		f.increment(t, user)

		assert.Equal(t, uint64(2), f.count(t))

		ret, err := f.env.Call(user, otherAddr, nil, opRead)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), binary.BigEndian.Uint64(ret), "sibling proxy state must not leak")
	})

	t.Run("failure: logic host rejects direct calls", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		_, err := f.env.Call(user, f.v1Addr, nil, opIncrement)
		require.ErrorIs(t, err, ErrDirectLogicCall)
	})

	t.Run("failure: admin never reaches the implementation", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		_, err := f.env.Call(proxyAdmin, f.proxyAddr, nil, opIncrement)
		require.ErrorIs(t, err, ErrAdminFallthrough)
		assert.Equal(t, uint64(0), f.count(t))
	})
}

func Test_Proxy_Upgrade(t *testing.T) {
	t.Parallel()

	t.Run("success: pointer swap keeps the storage", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)
		f.increment(t, user)
		f.increment(t, user)
		f.increment(t, user)

		calldata, err := PackUpgradeTo(f.v2Addr)
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)
		require.NoError(t, err)

		assert.Equal(t, f.v2Addr, implementationOf(f.env, f.proxyAddr))
		assert.Equal(t, uint64(3), f.count(t), "storage survives the swap")

		f.increment(t, user)
		assert.Equal(t, uint64(5), f.count(t), "new logic steps by two")

		events := f.env.EventsFrom(f.proxyAddr)
		require.Len(t, events, 1)
		assert.Equal(t, "Upgraded", events[0].Name)
		assert.Equal(t, f.v2Addr, events[0].Field("implementation"))
	})

	t.Run("failure: upgrade to an address without logic", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		calldata, err := PackUpgradeTo(common.HexToAddress("0xdead"))
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)

		var notImpl *NotAnImplementationError
		require.ErrorAs(t, err, &notImpl)
		assert.Equal(t, f.v1Addr, implementationOf(f.env, f.proxyAddr))
	})

	t.Run("failure: upgrade calldata from a non-admin is delegated", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		calldata, err := PackUpgradeTo(f.v2Addr)
		require.NoError(t, err)
		_, err = f.env.Call(user, f.proxyAddr, nil, calldata)

		require.ErrorIs(t, err, errCounterBadOp, "admin surface must stay invisible to users")
		assert.Equal(t, f.v1Addr, implementationOf(f.env, f.proxyAddr))
	})
}

func Test_Proxy_UpgradeToAndCall(t *testing.T) {
	t.Parallel()

	t.Run("success: initializer runs against the proxy storage", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)
		f.increment(t, user)

		calldata, err := PackUpgradeToAndCall(f.v2Addr, opMigrate)
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)
		require.NoError(t, err)

		assert.Equal(t, f.v2Addr, implementationOf(f.env, f.proxyAddr))
		assert.Equal(t, uint64(10), f.count(t), "migration saw the carried count")
	})

	t.Run("failure: failing initializer reverts the swap", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)
		f.increment(t, user)
		f.v2.failMigrate = true

		calldata, err := PackUpgradeToAndCall(f.v2Addr, opMigrate)
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)

		require.ErrorIs(t, err, errMigrateFail)
		assert.Equal(t, f.v1Addr, implementationOf(f.env, f.proxyAddr), "pointer must roll back")
		assert.Equal(t, uint64(1), f.count(t))

		f.increment(t, user)
		assert.Equal(t, uint64(2), f.count(t), "old logic still dispatches")
	})

	t.Run("failure: repeated migration is rejected by the implementation", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		calldata, err := PackUpgradeToAndCall(f.v2Addr, opMigrate)
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)
		require.NoError(t, err)

		_, err = f.env.Call(user, f.proxyAddr, nil, opMigrate)
		require.ErrorIs(t, err, errAlreadyMigrated)
	})
}

func Test_Proxy_ChangeAdmin(t *testing.T) {
	t.Parallel()

	t.Run("success: admin handover", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		calldata, err := PackChangeAdmin(nominee)
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)
		require.NoError(t, err)

		assert.Equal(t, common.BytesToHash(nominee.Bytes()), f.env.StorageAt(f.proxyAddr, AdminSlot))

		events := f.env.EventsFrom(f.proxyAddr)
		require.Len(t, events, 1)
		assert.Equal(t, "AdminChanged", events[0].Name)
		assert.Equal(t, proxyAdmin, events[0].Field("previousAdmin"))
		assert.Equal(t, nominee, events[0].Field("newAdmin"))

		// The old admin is an ordinary caller now.
		f.increment(t, proxyAdmin)
		assert.Equal(t, uint64(1), f.count(t))

		// The new admin sees the admin surface.
		viewData, err := proxyABI.Pack("admin")
		require.NoError(t, err)
		ret, err := f.env.Call(nominee, f.proxyAddr, nil, viewData)
		require.NoError(t, err)
		out, err := proxyABI.Unpack("admin", ret)
		require.NoError(t, err)
		assert.Equal(t, nominee, out[0].(common.Address))
	})

	t.Run("failure: zero admin", func(t *testing.T) {
		t.Parallel()

		f := newProxyFixture(t)

		calldata, err := PackChangeAdmin(common.Address{})
		require.NoError(t, err)
		_, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, calldata)

		require.ErrorIs(t, err, ErrZeroNewAdmin)
		assert.Equal(t, common.BytesToHash(proxyAdmin.Bytes()), f.env.StorageAt(f.proxyAddr, AdminSlot))
	})
}

func Test_Proxy_StorageSlots(t *testing.T) {
	t.Parallel()

	// The reserved slots are fixed by EIP-1967.
	assert.Equal(t,
		common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"),
		ImplementationSlot)
	assert.Equal(t,
		common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103"),
		AdminSlot)

	f := newProxyFixture(t)

	assert.Equal(t, common.BytesToHash(f.v1Addr.Bytes()), f.env.StorageAt(f.proxyAddr, ImplementationSlot))
	assert.Equal(t, common.BytesToHash(proxyAdmin.Bytes()), f.env.StorageAt(f.proxyAddr, AdminSlot))
	assert.Equal(t, common.Hash{}, f.env.StorageAt(f.proxyAddr, common.HexToHash("0x01")))
}

func Test_Proxy_AdminViews(t *testing.T) {
	t.Parallel()

	f := newProxyFixture(t)

	implData, err := proxyABI.Pack("implementation")
	require.NoError(t, err)
	ret, err := f.env.Call(proxyAdmin, f.proxyAddr, nil, implData)
	require.NoError(t, err)
	out, err := proxyABI.Unpack("implementation", ret)
	require.NoError(t, err)
	assert.Equal(t, f.v1Addr, out[0].(common.Address))

	adminData, err := proxyABI.Pack("admin")
	require.NoError(t, err)
	ret, err = f.env.Call(proxyAdmin, f.proxyAddr, nil, adminData)
	require.NoError(t, err)
	out, err = proxyABI.Unpack("admin", ret)
	require.NoError(t, err)
	assert.Equal(t, proxyAdmin, out[0].(common.Address))
}
