package bastion

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastion-gov/bastion/types"
)

const testPrivateKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func Test_PrivateKeySigner_Sign(t *testing.T) {
	t.Parallel()

	privKey, err := crypto.HexToECDSA(testPrivateKeyHex)
	require.NoError(t, err)

	t.Run("success: signature recovers to the signer address", func(t *testing.T) {
		t.Parallel()

		payload := crypto.Keccak256([]byte("payload"))

		raw, err := NewPrivateKeySigner(privKey).Sign(payload)
		require.NoError(t, err)

		sig, err := types.NewSignatureFromBytes(raw)
		require.NoError(t, err)

		recovered, err := sig.Recover(common.BytesToHash(payload))
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(privKey.PublicKey), recovered)
	})

	t.Run("failure: invalid payload length", func(t *testing.T) {
		t.Parallel()

		_, err := NewPrivateKeySigner(privKey).Sign([]byte("0x0"))
		require.EqualError(t, err, "hash is required to be exactly 32 bytes (3)")
	})
}

func Test_PrivateKeySigner_GetAddress(t *testing.T) {
	t.Parallel()

	privKey, err := crypto.HexToECDSA(testPrivateKeyHex)
	require.NoError(t, err)

	got, err := NewPrivateKeySigner(privKey).GetAddress()
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(privKey.PublicKey), got)
}
