package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"

	"github.com/bastion-gov/bastion/types"
)

// Env is a single in-memory chain: registered contracts, native balances, a
// monotonic clock and an event journal. All methods are synchronous; callers
// own the sequencing (one transaction at a time, matching the fabric's
// single-call determinism).
type Env struct {
	selector  types.ChainSelector
	now       uint64
	contracts map[common.Address]Contract
	balances  map[common.Address]*big.Int
	nonces    map[common.Address]uint64
	events    []Event
	lggr      log.Logger
}

// EnvOpt configures an Env.
type EnvOpt func(*Env)

// WithLogger sets the env's logger. Defaults to log.Root().
func WithLogger(lggr log.Logger) EnvOpt {
	return func(e *Env) {
		e.lggr = lggr
	}
}

// WithGenesisTime sets the starting chain timestamp.
func WithGenesisTime(ts uint64) EnvOpt {
	return func(e *Env) {
		e.now = ts
	}
}

// NewEnv creates an empty chain for the given selector.
func NewEnv(selector types.ChainSelector, opts ...EnvOpt) *Env {
	e := &Env{
		selector:  selector,
		contracts: make(map[common.Address]Contract),
		balances:  make(map[common.Address]*big.Int),
		nonces:    make(map[common.Address]uint64),
		lggr:      log.Root(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.lggr = e.lggr.New("chain", uint64(selector))

	return e
}

// Selector returns the chain selector this env models.
func (e *Env) Selector() types.ChainSelector {
	return e.selector
}

// Logger returns the env's logger. Contracts log through it so every
// transition carries the chain selector.
func (e *Env) Logger() log.Logger {
	return e.lggr
}

// Now returns the current chain timestamp in seconds.
func (e *Env) Now() uint64 {
	return e.now
}

// SetTime moves the chain clock to ts. Time only moves forward.
func (e *Env) SetTime(ts uint64) error {
	if ts < e.now {
		return ErrTimeReversed
	}
	e.now = ts

	return nil
}

// AdvanceTime moves the chain clock forward by the given number of seconds.
func (e *Env) AdvanceTime(seconds uint64) {
	e.now += seconds
}

// Register places a contract at a fixed address.
func (e *Env) Register(addr common.Address, c Contract) error {
	if _, ok := e.contracts[addr]; ok {
		return NewContractExistsError(addr)
	}
	e.contracts[addr] = c

	return nil
}

// Deploy registers a contract at an address derived from the deployer and its
// deploy nonce, the way CREATE derives contract addresses.
func (e *Env) Deploy(deployer common.Address, c Contract) (common.Address, error) {
	addr := crypto.CreateAddress(deployer, e.nonces[deployer])
	if err := e.Register(addr, c); err != nil {
		return common.Address{}, err
	}
	e.nonces[deployer]++

	return addr, nil
}

// Contract returns the contract registered at addr.
func (e *Env) Contract(addr common.Address) (Contract, bool) {
	c, ok := e.contracts[addr]

	return c, ok
}

// Balance returns a copy of the native balance at addr.
func (e *Env) Balance(addr common.Address) *big.Int {
	return bigOrZero(e.balances[addr])
}

// Fund credits addr with amount. It is the faucet used by deployments and
// tests; there is no minting path inside a transaction.
func (e *Env) Fund(addr common.Address, amount *big.Int) {
	e.balances[addr] = new(big.Int).Add(e.Balance(addr), amount)
}

// Debit removes amount from addr's balance, the faucet's inverse. Off-chain
// transports use it to reclaim value they credited ahead of a call that then
// failed.
func (e *Env) Debit(addr common.Address, amount *big.Int) error {
	have := e.Balance(addr)
	if have.Cmp(bigOrZero(amount)) < 0 {
		return NewInsufficientBalanceError(addr, amount, have)
	}
	e.balances[addr] = new(big.Int).Sub(have, bigOrZero(amount))

	return nil
}

// StorageAt reads a reserved storage slot from the contract at addr.
// Contracts that expose no raw slots report the zero hash.
func (e *Env) StorageAt(addr common.Address, slot common.Hash) common.Hash {
	if r, ok := e.contracts[addr].(StorageReader); ok {
		return r.StorageAt(slot)
	}

	return common.Hash{}
}

// Events returns a copy of the event journal.
func (e *Env) Events() []Event {
	out := make([]Event, len(e.events))
	copy(out, e.events)

	return out
}

// EventsFrom returns the journal entries emitted by addr.
func (e *Env) EventsFrom(addr common.Address) []Event {
	var out []Event
	for _, ev := range e.events {
		if ev.Address == addr {
			out = append(out, ev)
		}
	}

	return out
}

// Call runs one transaction: a single external call from an EOA or test
// identity. On error every state change is rolled back and the error is
// returned unchanged so callers can match on component error types.
func (e *Env) Call(from, to common.Address, value *big.Int, data []byte) ([]byte, error) {
	snap := e.snapshot()

	frame := &Frame{
		env:    e,
		origin: from,
		sender: from,
		self:   to,
		value:  bigOrZero(value),
	}

	ret, err := e.invoke(frame, data)
	if err != nil {
		e.restore(snap)

		return nil, err
	}

	return ret, nil
}

// Simulate runs a call against the current state and rolls back every change
// whether it commits or fails. The return value and error are the call's own,
// so callers can dry-run an execute that would revert without spending state.
func (e *Env) Simulate(from, to common.Address, value *big.Int, data []byte) ([]byte, error) {
	snap := e.snapshot()
	defer e.restore(snap)

	frame := &Frame{
		env:    e,
		origin: from,
		sender: from,
		self:   to,
		value:  bigOrZero(value),
	}

	return e.invoke(frame, data)
}

// invoke moves the frame's value from sender to callee and dispatches the
// calldata. The caller is responsible for snapshotting around it.
func (e *Env) invoke(frame *Frame, data []byte) ([]byte, error) {
	if err := e.transfer(frame.sender, frame.self, frame.value); err != nil {
		return nil, err
	}

	c, ok := e.contracts[frame.self]
	if !ok {
		if len(data) > 0 {
			return nil, NewNoCodeError(frame.self)
		}

		// Plain value transfer to an externally owned address.
		return nil, nil
	}

	return c.Call(frame, data)
}

// transfer moves native value and enforces the payable rule on the receiver.
func (e *Env) transfer(from, to common.Address, value *big.Int) error {
	if value == nil || value.Sign() == 0 {
		return nil
	}
	if value.Sign() < 0 {
		return ErrNegativeValue
	}

	if p, ok := e.contracts[to].(Payable); ok && !p.Payable() {
		return NewNotPayableError(to)
	}

	have := e.Balance(from)
	if have.Cmp(value) < 0 {
		return NewInsufficientBalanceError(from, value, have)
	}

	e.balances[from] = new(big.Int).Sub(have, value)
	e.balances[to] = new(big.Int).Add(e.Balance(to), value)

	return nil
}

// envSnapshot captures everything a call may mutate: balances, contract
// state and the journal length. The clock and deploy nonces never change
// inside a call.
type envSnapshot struct {
	balances  map[common.Address]*big.Int
	contracts map[common.Address]any
	eventsLen int
}

func (e *Env) snapshot() envSnapshot {
	snap := envSnapshot{
		balances:  make(map[common.Address]*big.Int, len(e.balances)),
		contracts: make(map[common.Address]any, len(e.contracts)),
		eventsLen: len(e.events),
	}
	for addr, bal := range e.balances {
		snap.balances[addr] = new(big.Int).Set(bal)
	}
	for addr, c := range e.contracts {
		if s, ok := c.(Snapshotter); ok {
			snap.contracts[addr] = s.Snapshot()
		}
	}

	return snap
}

func (e *Env) restore(snap envSnapshot) {
	e.balances = snap.balances
	for addr, state := range snap.contracts {
		if s, ok := e.contracts[addr].(Snapshotter); ok {
			s.Restore(state)
		}
	}
	e.events = e.events[:snap.eventsLen]
}
