package crosschain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrZeroOwner is returned when constructing a relay with no owner.
	ErrZeroOwner = errors.New("relay owner must not be the zero address")

	// ErrRelayPaused is returned when a paused relay is asked to send any
	// payload other than the canonical unpause.
	ErrRelayPaused = errors.New("relay is paused: only the canonical unpause payload may be sent")

	// ErrAlreadyPaused is returned when pausing an already paused relay.
	ErrAlreadyPaused = errors.New("relay is already paused")

	// ErrNotPaused is returned when unpausing a relay that is not paused.
	ErrNotPaused = errors.New("relay is not paused")

	// ErrFundingOverflow is returned when a message's funding computation
	// does not fit in uint256.
	ErrFundingOverflow = errors.New("required funding overflows uint256")

	// ErrNoPendingTickets is returned by DeliverNext when every ticket has
	// been delivered.
	ErrNoPendingTickets = errors.New("no pending tickets")
)

// NotOwnerError is returned when a relay method is called by anyone but the
// owner.
type NotOwnerError struct {
	Account common.Address
}

// NewNotOwnerError creates a new NotOwnerError.
func NewNotOwnerError(account common.Address) *NotOwnerError {
	return &NotOwnerError{Account: account}
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("account %s is not the relay owner", e.Account)
}

// InsufficientFundingError is returned when a send carries less value than
// the message requires.
type InsufficientFundingError struct {
	Provided *big.Int
	Required *big.Int
}

// NewInsufficientFundingError creates a new InsufficientFundingError.
func NewInsufficientFundingError(provided, required *big.Int) *InsufficientFundingError {
	return &InsufficientFundingError{Provided: provided, Required: required}
}

func (e *InsufficientFundingError) Error() string {
	return fmt.Sprintf("insufficient funding: provided %s, required %s", e.Provided, e.Required)
}

// RefundFailedError is returned when the excess value cannot be returned to
// the caller. The whole send reverts with it so value is never stranded.
type RefundFailedError struct {
	To     common.Address
	Amount *big.Int
	Err    error
}

// NewRefundFailedError creates a new RefundFailedError.
func NewRefundFailedError(to common.Address, amount *big.Int, err error) *RefundFailedError {
	return &RefundFailedError{To: to, Amount: amount, Err: err}
}

func (e *RefundFailedError) Error() string {
	return fmt.Sprintf("refund of %s to %s failed: %v", e.Amount, e.To, e.Err)
}

func (e *RefundFailedError) Unwrap() error {
	return e.Err
}

// InsufficientTicketValueError is returned by the inbox when the escrowed
// value does not cover the ticket's callvalue plus execution budget.
type InsufficientTicketValueError struct {
	Provided *big.Int
	Required *big.Int
}

// NewInsufficientTicketValueError creates a new InsufficientTicketValueError.
func NewInsufficientTicketValueError(provided, required *big.Int) *InsufficientTicketValueError {
	return &InsufficientTicketValueError{Provided: provided, Required: required}
}

func (e *InsufficientTicketValueError) Error() string {
	return fmt.Sprintf("insufficient ticket value: provided %s, required %s", e.Provided, e.Required)
}

// TicketNotFoundError is returned when no ticket has the given id.
type TicketNotFoundError struct {
	ID uint64
}

// NewTicketNotFoundError creates a new TicketNotFoundError.
func NewTicketNotFoundError(id uint64) *TicketNotFoundError {
	return &TicketNotFoundError{ID: id}
}

func (e *TicketNotFoundError) Error() string {
	return fmt.Sprintf("ticket %d not found", e.ID)
}

// TicketAlreadyDeliveredError is returned by Deliver for a ticket that has
// already run; duplicates go through Redeliver on purpose.
type TicketAlreadyDeliveredError struct {
	ID uint64
}

// NewTicketAlreadyDeliveredError creates a new TicketAlreadyDeliveredError.
func NewTicketAlreadyDeliveredError(id uint64) *TicketAlreadyDeliveredError {
	return &TicketAlreadyDeliveredError{ID: id}
}

func (e *TicketAlreadyDeliveredError) Error() string {
	return fmt.Sprintf("ticket %d already delivered", e.ID)
}

// TicketNotDeliveredError is returned by Redeliver for a ticket that has
// never run.
type TicketNotDeliveredError struct {
	ID uint64
}

// NewTicketNotDeliveredError creates a new TicketNotDeliveredError.
func NewTicketNotDeliveredError(id uint64) *TicketNotDeliveredError {
	return &TicketNotDeliveredError{ID: id}
}

func (e *TicketNotDeliveredError) Error() string {
	return fmt.Sprintf("ticket %d has not been delivered", e.ID)
}

// DeliveryFailedError is returned when a ticket's L2 call reverts. The ticket
// stays undelivered and may be retried.
type DeliveryFailedError struct {
	ID  uint64
	Err error
}

// NewDeliveryFailedError creates a new DeliveryFailedError.
func NewDeliveryFailedError(id uint64, err error) *DeliveryFailedError {
	return &DeliveryFailedError{ID: id, Err: err}
}

func (e *DeliveryFailedError) Error() string {
	return fmt.Sprintf("ticket %d delivery failed: %v", e.ID, e.Err)
}

func (e *DeliveryFailedError) Unwrap() error {
	return e.Err
}
