package timelock

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role identifiers, keyed by the keccak256 hash of the role name.
var (
	// RoleAdmin manages role membership. The controller also treats a call
	// from its own address as admin, so role changes can be scheduled through
	// the queue itself.
	RoleAdmin = crypto.Keccak256Hash([]byte("ADMIN_ROLE"))

	// RoleProposer may schedule operations.
	RoleProposer = crypto.Keccak256Hash([]byte("PROPOSER_ROLE"))

	// RoleExecutor may execute ready operations. Granting it to the zero
	// address opens execution to any caller.
	RoleExecutor = crypto.Keccak256Hash([]byte("EXECUTOR_ROLE"))

	// RoleCanceller may cancel pending operations.
	RoleCanceller = crypto.Keccak256Hash([]byte("CANCELLER_ROLE"))
)

// OpenExecutor is the sentinel account whose executor membership opens
// execution to everyone.
var OpenExecutor = common.Address{}

var roleNames = map[common.Hash]string{
	RoleAdmin:     "ADMIN_ROLE",
	RoleProposer:  "PROPOSER_ROLE",
	RoleExecutor:  "EXECUTOR_ROLE",
	RoleCanceller: "CANCELLER_ROLE",
}

// RoleName returns the human readable name for a role hash, or its hex form
// for unknown roles.
func RoleName(role common.Hash) string {
	if name, ok := roleNames[role]; ok {
		return name
	}

	return role.Hex()
}
