package crosschain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
)

// Ticket is one retryable message in flight between the chains: the call to
// run on L2, the execution budget escrowed for it, and the refund addresses
// the budget falls back to.
type Ticket struct {
	ID              uint64
	From            common.Address
	To              common.Address
	L2CallValue     *big.Int
	SubmissionCost  *big.Int
	GasLimit        *big.Int
	MaxFeePerGas    *big.Int
	ExcessFeeRefund common.Address
	Beneficiary     common.Address
	Data            []byte
	Deliveries      int
}

// Delivered reports whether the ticket has executed on L2 at least once.
func (t Ticket) Delivered() bool {
	return t.Deliveries > 0
}

// Bridge carries retryable tickets from the L1 inbox to the L2 chain. It is
// the transport between the two envs, not a contract on either: tickets are
// enqueued by the inbox inside L1 transactions and delivered here by the
// operator (or a test) whenever it chooses. Delivery is at-least-once and
// unordered; Redeliver exists so receivers can be exercised against duplicate
// messages.
type Bridge struct {
	l2      *chain.Env
	tickets []*Ticket
	nextID  uint64
}

// NewBridge creates a bridge delivering into the given L2 env.
func NewBridge(l2 *chain.Env) *Bridge {
	return &Bridge{l2: l2, nextID: 1}
}

// enqueue appends a ticket and assigns its id. Only the inbox calls this, so
// the inbox's snapshot of the queue length is enough to roll enqueues back
// when an L1 transaction reverts.
func (b *Bridge) enqueue(t Ticket) uint64 {
	t.ID = b.nextID
	b.nextID++
	b.tickets = append(b.tickets, &t)

	return t.ID
}

// Ticket returns a copy of the ticket with the given id.
func (b *Bridge) Ticket(id uint64) (Ticket, error) {
	t, err := b.ticket(id)
	if err != nil {
		return Ticket{}, err
	}

	return *t, nil
}

// TicketCount returns how many tickets have been created.
func (b *Bridge) TicketCount() int {
	return len(b.tickets)
}

// Pending returns the ids of tickets that have never been delivered, in
// creation order.
func (b *Bridge) Pending() []uint64 {
	var ids []uint64
	for _, t := range b.tickets {
		if !t.Delivered() {
			ids = append(ids, t.ID)
		}
	}

	return ids
}

// DeliverNext delivers the oldest undelivered ticket and returns its id.
func (b *Bridge) DeliverNext() (uint64, error) {
	for _, t := range b.tickets {
		if !t.Delivered() {
			return t.ID, b.deliver(t)
		}
	}

	return 0, ErrNoPendingTickets
}

// Deliver delivers the ticket with the given id for the first time. Delivering
// out of creation order is allowed; the receiver must not depend on ordering.
func (b *Bridge) Deliver(id uint64) error {
	t, err := b.ticket(id)
	if err != nil {
		return err
	}
	if t.Delivered() {
		return NewTicketAlreadyDeliveredError(id)
	}

	return b.deliver(t)
}

// Redeliver runs an already-delivered ticket again, modeling the duplicate
// deliveries an at-least-once transport may produce. Receivers are expected
// to treat the repeat as a no-op.
func (b *Bridge) Redeliver(id uint64) error {
	t, err := b.ticket(id)
	if err != nil {
		return err
	}
	if !t.Delivered() {
		return NewTicketNotDeliveredError(id)
	}

	return b.deliver(t)
}

func (b *Bridge) ticket(id uint64) (*Ticket, error) {
	for _, t := range b.tickets {
		if t.ID == id {
			return t, nil
		}
	}

	return nil, NewTicketNotFoundError(id)
}

// deliver runs the ticket's call on L2 from the aliased L1 sender. Each
// attempt carries its own escrowed callvalue; when the call fails the credit
// is returned to escrow so a later attempt starts clean.
func (b *Bridge) deliver(t *Ticket) error {
	sender := Alias(t.From)
	if t.L2CallValue != nil && t.L2CallValue.Sign() > 0 {
		b.l2.Fund(sender, t.L2CallValue)
	}

	if _, err := b.l2.Call(sender, t.To, t.L2CallValue, t.Data); err != nil {
		if t.L2CallValue != nil && t.L2CallValue.Sign() > 0 {
			// The failed call restored the credit onto the sender, so
			// this debit cannot come up short.
			_ = b.l2.Debit(sender, t.L2CallValue)
		}

		return NewDeliveryFailedError(t.ID, err)
	}

	t.Deliveries++
	b.l2.Logger().Debug("ticket delivered", "id", t.ID, "to", t.To, "sender", sender, "deliveries", t.Deliveries)

	return nil
}

// queueMark captures how much of the queue existed when an L1 transaction
// began. Deliveries never run inside an L1 transaction, so truncating to the
// mark is a complete rollback of the inbox's writes.
type queueMark struct {
	count  int
	nextID uint64
}

func (b *Bridge) mark() queueMark {
	return queueMark{count: len(b.tickets), nextID: b.nextID}
}

func (b *Bridge) rewind(m queueMark) {
	b.tickets = b.tickets[:m.count]
	b.nextID = m.nextID
}
