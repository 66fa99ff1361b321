package timelock

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastion-gov/bastion/types"
)

func Test_HashOperation(t *testing.T) {
	t.Parallel()

	target := common.HexToAddress("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	salt := common.HexToHash("0x01")

	base, err := HashOperation(target, big.NewInt(10), data, common.Hash{}, salt)
	require.NoError(t, err)

	t.Run("deterministic for equal inputs", func(t *testing.T) {
		t.Parallel()

		again, err := HashOperation(target, big.NewInt(10), data, common.Hash{}, salt)
		require.NoError(t, err)
		assert.Equal(t, base, again)
	})

	t.Run("nil value hashes like zero value", func(t *testing.T) {
		t.Parallel()

		withNil, err := HashOperation(target, nil, data, common.Hash{}, salt)
		require.NoError(t, err)
		withZero, err := HashOperation(target, big.NewInt(0), data, common.Hash{}, salt)
		require.NoError(t, err)
		assert.Equal(t, withZero, withNil)
		assert.NotEqual(t, base, withNil)
	})

	t.Run("salt differentiates otherwise equal operations", func(t *testing.T) {
		t.Parallel()

		other, err := HashOperation(target, big.NewInt(10), data, common.Hash{}, common.HexToHash("0x02"))
		require.NoError(t, err)
		assert.NotEqual(t, base, other)
	})

	t.Run("predecessor differentiates", func(t *testing.T) {
		t.Parallel()

		other, err := HashOperation(target, big.NewInt(10), data, common.HexToHash("0x99"), salt)
		require.NoError(t, err)
		assert.NotEqual(t, base, other)
	})
}

func Test_StateOf(t *testing.T) {
	t.Parallel()

	const now = uint64(1_000_000)

	tests := []struct {
		name          string
		giveTimestamp uint64
		want          types.OperationState
	}{
		{name: "zero timestamp is unknown", giveTimestamp: 0, want: types.OperationStateUnknown},
		{name: "done sentinel", giveTimestamp: DoneTimestamp, want: types.OperationStateDone},
		{name: "future timestamp is scheduled", giveTimestamp: now + 1, want: types.OperationStateScheduled},
		{name: "exact timestamp is ready", giveTimestamp: now, want: types.OperationStateReady},
		{name: "past timestamp is ready", giveTimestamp: now - 500, want: types.OperationStateReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, StateOf(tt.giveTimestamp, now))
		})
	}
}
