package sdk

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RootSigningHash returns the digest quorum owners sign to authorize a
// proposal root: the EIP-191 prefixed keccak of the root and its expiry.
func RootSigningHash(root common.Hash, validUntil uint32) common.Hash {
	var validUntilBytes [32]byte
	binary.BigEndian.PutUint32(validUntilBytes[28:], validUntil)

	return toEthSignedMessageHash(crypto.Keccak256Hash(root.Bytes(), validUntilBytes[:]))
}

// toEthSignedMessageHash wraps a digest in the Ethereum signed message
// prefix, matching what signing tools produce for a 32 byte payload.
func toEthSignedMessageHash(digest common.Hash) common.Hash {
	prefix := []byte("\x19Ethereum Signed Message:\n32")

	return crypto.Keccak256Hash(prefix, digest.Bytes())
}
