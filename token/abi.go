package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// ControllerABI is the controller's full surface across versions. Calling a
// method a deployed version does not implement reverts with an unhandled
// method error, the fabric's rendering of a missing selector.
const ControllerABI = `[
	{
		"inputs": [{"type": "address", "name": "admin"}],
		"name": "initialize",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [{"type": "uint256", "name": "feeCap"}],
		"name": "initializeV2",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [{"type": "address", "name": "l1Governance"}],
		"name": "setL1Governance",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "l1Governance",
		"outputs": [{"type": "address", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "bool", "name": "paused"}],
		"name": "setPaused",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "paused",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "uint16", "name": "feeBps"}],
		"name": "setFeeBps",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "feeBps",
		"outputs": [{"type": "uint16", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "address", "name": "treasury"}],
		"name": "setTreasury",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "treasury",
		"outputs": [{"type": "address", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "uint256", "name": "feeCap"}],
		"name": "setFeeCap",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "feeCap",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"type": "bytes32", "name": "role"},
			{"type": "address", "name": "account"}
		],
		"name": "grantRole",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [
			{"type": "bytes32", "name": "role"},
			{"type": "address", "name": "account"}
		],
		"name": "revokeRole",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [
			{"type": "bytes32", "name": "role"},
			{"type": "address", "name": "account"}
		],
		"name": "hasRole",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "version",
		"outputs": [{"type": "uint8", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var controllerABI = abiUtils.MustParse(ControllerABI)

// PackInitialize encodes an initialize call.
func PackInitialize(admin common.Address) ([]byte, error) {
	return controllerABI.Pack("initialize", admin)
}

// PackInitializeV2 encodes an initializeV2 call, the payload handed to
// upgradeAndCall when moving to version 2.
func PackInitializeV2(feeCap *big.Int) ([]byte, error) {
	return controllerABI.Pack("initializeV2", feeCap)
}

// PackSetL1Governance encodes a setL1Governance call.
func PackSetL1Governance(l1Governance common.Address) ([]byte, error) {
	return controllerABI.Pack("setL1Governance", l1Governance)
}

// PackSetPaused encodes a setPaused call. For true and false it produces the
// relay's canonical pause and unpause payloads byte for byte.
func PackSetPaused(paused bool) ([]byte, error) {
	return controllerABI.Pack("setPaused", paused)
}

// PackSetFeeBps encodes a setFeeBps call.
func PackSetFeeBps(feeBps uint16) ([]byte, error) {
	return controllerABI.Pack("setFeeBps", feeBps)
}

// PackSetTreasury encodes a setTreasury call.
func PackSetTreasury(treasury common.Address) ([]byte, error) {
	return controllerABI.Pack("setTreasury", treasury)
}

// PackSetFeeCap encodes a setFeeCap call.
func PackSetFeeCap(feeCap *big.Int) ([]byte, error) {
	return controllerABI.Pack("setFeeCap", feeCap)
}

// PackGrantRole encodes a grantRole call.
func PackGrantRole(role common.Hash, account common.Address) ([]byte, error) {
	return controllerABI.Pack("grantRole", role, account)
}

// PackRevokeRole encodes a revokeRole call.
func PackRevokeRole(role common.Hash, account common.Address) ([]byte, error) {
	return controllerABI.Pack("revokeRole", role, account)
}
