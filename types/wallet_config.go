package types

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidWalletConfig = errors.New("invalid wallet config")

// WalletConfig mirrors a deployed quorum wallet: a flat owner set and the
// number of distinct approvals a transaction needs before it may execute.
type WalletConfig struct {
	// Threshold is the number of distinct owner approvals required to
	// execute.
	Threshold uint8 `json:"threshold"`

	// Owners is the wallet's owner set. Owners are unique and non-zero.
	Owners []common.Address `json:"owners"`
}

// NewWalletConfig returns a config with the given threshold and owners and
// ensures it is valid.
func NewWalletConfig(threshold uint8, owners []common.Address) (WalletConfig, error) {
	config := WalletConfig{
		Threshold: threshold,
		Owners:    owners,
	}

	if err := config.Validate(); err != nil {
		return WalletConfig{}, err
	}

	return config, nil
}

// Validate checks the config against the wallet's deployment rules.
func (c *WalletConfig) Validate() error {
	if c.Threshold == 0 {
		return fmt.Errorf("%w: threshold must be greater than 0", ErrInvalidWalletConfig)
	}

	if len(c.Owners) == 0 {
		return fmt.Errorf("%w: owner set must not be empty", ErrInvalidWalletConfig)
	}

	if int(c.Threshold) > len(c.Owners) {
		return fmt.Errorf("%w: threshold must not exceed the number of owners", ErrInvalidWalletConfig)
	}

	seen := make(map[common.Address]struct{}, len(c.Owners))
	for _, owner := range c.Owners {
		if owner == (common.Address{}) {
			return fmt.Errorf("%w: owner cannot be the zero address", ErrInvalidWalletConfig)
		}
		if _, ok := seen[owner]; ok {
			return fmt.Errorf("%w: duplicate owner %s", ErrInvalidWalletConfig, owner)
		}
		seen[owner] = struct{}{}
	}

	return nil
}

// Equals checks if two configs are equal. Owner order does not matter.
func (c *WalletConfig) Equals(other *WalletConfig) bool {
	if c.Threshold != other.Threshold {
		return false
	}

	if len(c.Owners) != len(other.Owners) {
		return false
	}

	for _, owner := range c.Owners {
		if !slices.Contains(other.Owners, owner) {
			return false
		}
	}

	return true
}

// CanExecute checks whether the given approvers reach the wallet's quorum.
// Every approver must be an owner; duplicates count once.
func (c *WalletConfig) CanExecute(approvers []common.Address) (bool, error) {
	distinct := make(map[common.Address]struct{}, len(approvers))
	for _, approver := range approvers {
		if !slices.Contains(c.Owners, approver) {
			return false, fmt.Errorf("approver %s is not a wallet owner", approver)
		}
		distinct[approver] = struct{}{}
	}

	return len(distinct) >= int(c.Threshold), nil
}
