package token

import (
	"math/big"

	"github.com/bastion-gov/bastion/chain"
	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
	"github.com/bastion-gov/bastion/upgrades"
)

// ControllerV2 extends version 1 with a governable fee cap. The upgrade keeps
// the proxy's storage; initializeV2 runs once to populate the new field.
type ControllerV2 struct{}

var _ upgrades.Implementation = ControllerV2{}

// InitStorage implements upgrades.Implementation.
func (ControllerV2) InitStorage() upgrades.Storage {
	return newState()
}

// Dispatch implements upgrades.Implementation.
func (ControllerV2) Dispatch(frame *chain.Frame, storage upgrades.Storage, input []byte) ([]byte, error) {
	method, args, err := abiUtils.MethodFor(controllerABI, input)
	if err != nil {
		return nil, err
	}

	s := storage.(*state)
	switch method.Name {
	case "initializeV2":
		return nil, initializeV2(frame, s, args[0].(*big.Int))
	case "setFeeCap":
		return nil, setFeeCap(frame, s, args[0].(*big.Int))
	case "feeCap":
		return abiUtils.PackResult(method, s.feeCap)
	default:
		return dispatchCommon(frame, s, method, args)
	}
}

// initializeV2 runs during the upgrade call, with the proxy admin as sender,
// so the upgrade pipeline must hold the upgrader role before the swap.
func initializeV2(frame *chain.Frame, s *state, feeCap *big.Int) error {
	if s.version != 1 {
		return NewInvalidVersionError(s.version, 1)
	}
	if !s.hasRole(RoleUpgrader, frame.Sender()) {
		return NewNotAuthorizedError(frame.Sender())
	}

	s.version = 2
	s.feeCap = new(big.Int).Set(feeCap)
	frame.Emit("Initialized", "version", uint8(2), "feeCap", feeCap)

	return nil
}

func setFeeCap(frame *chain.Frame, s *state, feeCap *big.Int) error {
	if err := s.checkGovernance(frame.Sender()); err != nil {
		return err
	}
	if s.feeCap.Cmp(feeCap) == 0 {
		return nil
	}

	old := s.feeCap
	s.feeCap = new(big.Int).Set(feeCap)
	frame.Emit("FeeCapChanged", "oldFeeCap", old, "newFeeCap", feeCap)

	return nil
}
