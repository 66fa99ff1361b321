package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role identifiers, keyed by the keccak256 hash of the role name.
var (
	// RoleAdmin manages roles and parameters locally, carrying the same
	// authority as the aliased governance link.
	RoleAdmin = crypto.Keccak256Hash([]byte("ADMIN_ROLE"))

	// RolePauser may toggle the pause flag without going through the
	// bridge.
	RolePauser = crypto.Keccak256Hash([]byte("PAUSER_ROLE"))

	// RoleUpgrader may run versioned initializers during an upgrade. It is
	// granted to the proxy admin, the sender initializers observe.
	RoleUpgrader = crypto.Keccak256Hash([]byte("UPGRADER_ROLE"))
)

var roleNames = map[common.Hash]string{
	RoleAdmin:    "ADMIN_ROLE",
	RolePauser:   "PAUSER_ROLE",
	RoleUpgrader: "UPGRADER_ROLE",
}

// RoleName returns the human readable name for a role hash, or its hex form
// for unknown roles.
func RoleName(role common.Hash) string {
	if name, ok := roleNames[role]; ok {
		return name
	}

	return role.Hex()
}
