package crosschain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// aliasOffset is added to an L1 sender's address when its message executes on
// L2. Receivers authenticate cross-chain callers by recomputing the transform,
// never by trusting a flag carried in the message.
var aliasOffset = uint256.MustFromHex("0x1111000000000000000000000000000000001111")

// Alias maps an L1 address to the sender address its messages carry on L2:
// (addr + offset) mod 2^160.
func Alias(l1 common.Address) common.Address {
	sum := new(uint256.Int).Add(addressWord(l1), aliasOffset)

	return common.BytesToAddress(sum.Bytes())
}

// Unalias inverts Alias, recovering the L1 address behind an aliased L2
// sender. Unalias(Alias(a)) == a for every address, including those that wrap
// around the 160-bit boundary.
func Unalias(l2 common.Address) common.Address {
	// Sub wraps mod 2^256; cropping to 20 bytes reduces mod 2^160, and
	// 2^256 is a multiple of 2^160, so the wraparound lands on the right
	// residue.
	diff := new(uint256.Int).Sub(addressWord(l2), aliasOffset)

	return common.BytesToAddress(diff.Bytes())
}

func addressWord(a common.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(a.Bytes())
}
