package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call is a single contract invocation: a target address, native value and
// ABI-encoded calldata. It is the unit a quorum wallet queues, a delay queue
// schedules, and a proposal authorizes.
type Call struct {
	To    common.Address `json:"to"`
	Value *big.Int       `json:"value" validate:"required"`
	Data  []byte         `json:"data"`
}

// ChainOperation is a Call bound to the chain it must run on.
type ChainOperation struct {
	ChainSelector ChainSelector `json:"chainSelector" validate:"required"`
	Call
}
