package crosschain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Inbox_CreateRetryableTicket(t *testing.T) {
	t.Parallel()

	t.Run("success: value covers callvalue plus execution budget", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.l1.Fund(stranger, big.NewInt(1_000_000))
		bnd := NewInboxBinding(f.l1, f.inboxAddr)

		// 500 callvalue + 201_000 execution budget.
		pay := big.NewInt(201_500)
		id, err := bnd.CreateRetryableTicket(stranger, pay, f.sinkAddr, big.NewInt(500), subCost, stranger, stranger, gasLimit, feePerGas, []byte{0x01})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), id)

		ticket, err := f.bridge.Ticket(id)
		require.NoError(t, err)
		assert.Equal(t, stranger, ticket.From, "direct tickets carry their real creator")
		assert.Equal(t, big.NewInt(500), ticket.L2CallValue)

		assert.Equal(t, pay, f.l1.Balance(f.inboxAddr))
		assert.Equal(t, big.NewInt(1_000_000-201_500), f.l1.Balance(stranger))
	})

	t.Run("failure: underpaid by one", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.l1.Fund(stranger, big.NewInt(1_000_000))
		bnd := NewInboxBinding(f.l1, f.inboxAddr)

		pay := big.NewInt(201_499)
		_, err := bnd.CreateRetryableTicket(stranger, pay, f.sinkAddr, big.NewInt(500), subCost, stranger, stranger, gasLimit, feePerGas, []byte{0x01})

		var short *InsufficientTicketValueError
		require.ErrorAs(t, err, &short)
		assert.Equal(t, pay, short.Provided)
		assert.Equal(t, big.NewInt(201_500), short.Required)

		assert.Zero(t, f.bridge.TicketCount())
		assert.Equal(t, big.NewInt(1_000_000), f.l1.Balance(stranger))
	})
}

func Test_Bridge_Deliver(t *testing.T) {
	t.Parallel()

	t.Run("success: sender arrives aliased", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		payload := []byte{0xAA}
		id := f.sendCall(t, payload)

		require.NoError(t, f.bridge.Deliver(id))

		require.Len(t, f.sink.calls, 1)
		assert.Equal(t, Alias(f.relayAddr), f.sink.calls[0].sender)
		assert.Equal(t, payload, f.sink.calls[0].data)

		ticket, err := f.bridge.Ticket(id)
		require.NoError(t, err)
		assert.True(t, ticket.Delivered())
		assert.Equal(t, 1, ticket.Deliveries)
	})

	t.Run("success: out of order delivery", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		first := f.sendCall(t, []byte{0x01})
		second := f.sendCall(t, []byte{0x02})
		third := f.sendCall(t, []byte{0x03})

		require.NoError(t, f.bridge.Deliver(second))
		assert.Equal(t, []uint64{first, third}, f.bridge.Pending())

		id, err := f.bridge.DeliverNext()
		require.NoError(t, err)
		assert.Equal(t, first, id, "DeliverNext picks the oldest pending ticket")
		assert.Equal(t, []uint64{third}, f.bridge.Pending())

		require.Len(t, f.sink.calls, 2)
		assert.Equal(t, []byte{0x02}, f.sink.calls[0].data)
		assert.Equal(t, []byte{0x01}, f.sink.calls[1].data)
	})

	t.Run("failure: delivery errors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		id := f.sendCall(t, []byte{0x01})

		var notFound *TicketNotFoundError
		require.ErrorAs(t, f.bridge.Deliver(99), &notFound)

		var notDelivered *TicketNotDeliveredError
		require.ErrorAs(t, f.bridge.Redeliver(id), &notDelivered)

		require.NoError(t, f.bridge.Deliver(id))

		var already *TicketAlreadyDeliveredError
		require.ErrorAs(t, f.bridge.Deliver(id), &already)

		_, err := f.bridge.DeliverNext()
		require.ErrorIs(t, err, ErrNoPendingTickets)
	})

	t.Run("failure: receiver revert keeps the ticket pending", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		id := f.sendCall(t, []byte{0x01})
		f.sink.fail = true

		_, err := f.bridge.DeliverNext()

		var failed *DeliveryFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, id, failed.ID)
		require.ErrorIs(t, err, errSinkFail)

		ticket, terr := f.bridge.Ticket(id)
		require.NoError(t, terr)
		assert.False(t, ticket.Delivered(), "failed delivery stays retryable")
		assert.Empty(t, f.sink.calls, "failed call rolls back on L2")

		f.sink.fail = false
		require.NoError(t, f.bridge.Deliver(id))
		require.Len(t, f.sink.calls, 1)
	})
}

func Test_Bridge_Redeliver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.sendCall(t, []byte{0x01})

	require.NoError(t, f.bridge.Deliver(id))
	require.NoError(t, f.bridge.Redeliver(id))

	require.Len(t, f.sink.calls, 2, "the bridge does not deduplicate; receivers must")
	assert.Equal(t, f.sink.calls[0], f.sink.calls[1])

	ticket, err := f.bridge.Ticket(id)
	require.NoError(t, err)
	assert.Equal(t, 2, ticket.Deliveries)
}

func Test_Bridge_Callvalue(t *testing.T) {
	t.Parallel()

	t.Run("success: escrowed value lands on the receiver", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.l1.Fund(stranger, big.NewInt(1_000_000))
		bnd := NewInboxBinding(f.l1, f.inboxAddr)

		id, err := bnd.CreateRetryableTicket(stranger, big.NewInt(201_500), f.sinkAddr, big.NewInt(500), subCost, stranger, stranger, gasLimit, feePerGas, []byte{0x01})
		require.NoError(t, err)

		require.NoError(t, f.bridge.Deliver(id))

		require.Len(t, f.sink.calls, 1)
		assert.Equal(t, Alias(stranger), f.sink.calls[0].sender)
		assert.Equal(t, big.NewInt(500), f.sink.calls[0].value)
		assert.Equal(t, big.NewInt(500), f.l2.Balance(f.sinkAddr))
		assert.Equal(t, big.NewInt(0), f.l2.Balance(Alias(stranger)))
	})

	t.Run("failure: escrow returns when the call reverts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.l1.Fund(stranger, big.NewInt(1_000_000))
		bnd := NewInboxBinding(f.l1, f.inboxAddr)

		id, err := bnd.CreateRetryableTicket(stranger, big.NewInt(201_500), f.sinkAddr, big.NewInt(500), subCost, stranger, stranger, gasLimit, feePerGas, []byte{0x01})
		require.NoError(t, err)

		f.sink.fail = true
		require.Error(t, f.bridge.Deliver(id))

		assert.Equal(t, big.NewInt(0), f.l2.Balance(Alias(stranger)), "no credit lingers after a failed delivery")
		assert.Equal(t, big.NewInt(0), f.l2.Balance(f.sinkAddr))

		f.sink.fail = false
		require.NoError(t, f.bridge.Deliver(id))
		assert.Equal(t, big.NewInt(500), f.l2.Balance(f.sinkAddr))
	})
}
