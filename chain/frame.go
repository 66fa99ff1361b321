package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Frame is the execution context of one call: who sent it, which address is
// executing, how much value rode along, and the env it runs in.
type Frame struct {
	env    *Env
	origin common.Address
	sender common.Address
	self   common.Address
	value  *big.Int
	depth  int
}

// Env returns the chain this frame executes on.
func (f *Frame) Env() *Env {
	return f.env
}

// Origin returns the transaction's original sender.
func (f *Frame) Origin() common.Address {
	return f.origin
}

// Sender returns the immediate caller of this frame.
func (f *Frame) Sender() common.Address {
	return f.sender
}

// Self returns the executing contract's address.
func (f *Frame) Self() common.Address {
	return f.self
}

// Value returns a copy of the native value sent with this call.
func (f *Frame) Value() *big.Int {
	return bigOrZero(f.value)
}

// Sub performs a nested call from the executing contract. The sub-call runs
// under its own snapshot: when it fails, its state changes (including the
// value transfer) are rolled back, but the current frame keeps its own
// progress and may treat the failure as data rather than reverting itself.
func (f *Frame) Sub(to common.Address, value *big.Int, data []byte) ([]byte, error) {
	if f.depth+1 >= maxCallDepth {
		return nil, ErrCallDepthExceeded
	}

	snap := f.env.snapshot()

	sub := &Frame{
		env:    f.env,
		origin: f.origin,
		sender: f.self,
		self:   to,
		value:  bigOrZero(value),
		depth:  f.depth + 1,
	}

	ret, err := f.env.invoke(sub, data)
	if err != nil {
		f.env.restore(snap)

		return nil, err
	}

	return ret, nil
}

// Transfer moves native value from the executing contract without running
// callee code. Used for refunds and sweeps; the payable rule still applies,
// so a rejecting receiver fails the transfer.
func (f *Frame) Transfer(to common.Address, value *big.Int) error {
	return f.env.transfer(f.self, to, value)
}

// Emit appends an event from the executing contract to the env's journal.
// Fields are alternating key/value pairs, the same shape the logger takes.
func (f *Frame) Emit(name string, kvs ...any) {
	ev := NewEvent(f.self, name, kvs...)
	f.env.events = append(f.env.events, ev)
	f.env.lggr.Debug("event emitted", append([]any{"contract", f.self, "event", name}, kvs...)...)
}
