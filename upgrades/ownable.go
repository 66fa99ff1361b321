package upgrades

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bastion-gov/bastion/chain"
)

// twoStepOwnable is the owner handshake shared by the authorizer and the
// registrar. A nomination takes effect only when the nominee accepts, so
// authority can never be redirected to an address that cannot act.
type twoStepOwnable struct {
	owner        common.Address
	pendingOwner common.Address
}

func (o *twoStepOwnable) checkOwner(sender common.Address) error {
	if sender != o.owner {
		return NewNotOwnerError(sender)
	}

	return nil
}

func (o *twoStepOwnable) transferOwnership(frame *chain.Frame, newOwner common.Address) error {
	if err := o.checkOwner(frame.Sender()); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroNewOwner
	}

	o.pendingOwner = newOwner
	frame.Emit("OwnershipTransferStarted", "previousOwner", o.owner, "newOwner", newOwner)

	return nil
}

func (o *twoStepOwnable) acceptOwnership(frame *chain.Frame) error {
	if frame.Sender() != o.pendingOwner {
		return NewNotPendingOwnerError(frame.Sender())
	}

	previous := o.owner
	o.owner = o.pendingOwner
	o.pendingOwner = common.Address{}
	frame.Emit("OwnershipTransferred", "previousOwner", previous, "newOwner", o.owner)

	return nil
}
