// Package chain provides the deterministic execution fabric the governance
// components run on: one in-memory chain per Env, synchronous calls, and
// full revert of balances, contract state and events when a call fails.
//
// The fabric models exactly what the components need. Each transaction is a
// single external call. Contracts dispatch on 4-byte ABI selectors, may call
// each other through sub-frames, and hold native value. There is no gas
// metering and no contract creation from within a call.
package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Contract is the execution surface registered at an address. Input is ABI
// calldata (4-byte selector followed by encoded arguments); output is the
// ABI-encoded return value. A non-nil error reverts every state change made
// by the call, including sub-calls and transferred value.
type Contract interface {
	Call(frame *Frame, input []byte) ([]byte, error)
}

// Snapshotter captures and restores a contract's internal state. Every
// stateful contract must implement it so the env can roll back failed
// transactions without partial writes.
type Snapshotter interface {
	Snapshot() any
	Restore(snap any)
}

// Payable reports whether a contract accepts native value. Contracts that do
// not implement it accept value. Sending value to a contract that reports
// false fails the transfer, which is how refund delivery failure is modeled.
type Payable interface {
	Payable() bool
}

// StorageReader exposes raw reserved storage slots, such as the proxy's
// implementation and admin pointers. Reads must agree bitwise with whatever
// the contract reports through its call surface.
type StorageReader interface {
	StorageAt(slot common.Hash) common.Hash
}

// maxCallDepth bounds nested sub-calls.
const maxCallDepth = 64

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}
