package timelock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// ControllerABI is the controller's call surface.
const ControllerABI = `[
	{
		"inputs": [
			{"type": "address", "name": "target"},
			{"type": "uint256", "name": "value"},
			{"type": "bytes", "name": "data"},
			{"type": "bytes32", "name": "predecessor"},
			{"type": "bytes32", "name": "salt"},
			{"type": "uint256", "name": "delay"}
		],
		"name": "schedule",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [
			{"type": "address", "name": "target"},
			{"type": "uint256", "name": "value"},
			{"type": "bytes", "name": "data"},
			{"type": "bytes32", "name": "predecessor"},
			{"type": "bytes32", "name": "salt"}
		],
		"name": "execute",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"type": "bytes32", "name": "id"}],
		"name": "cancel",
		"outputs": [],
		"type": "function"
	},
	{
		"inputs": [{"type": "uint256", "name": "newDelay"}],
		"name": "updateDelay",
		"outputs": [],
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
		"inputs": [{"type": "bytes32", "name": "role"}],
		"name": "getRoleMembers",
		"outputs": [{"type": "address[]", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"type": "address", "name": "target"},
			{"type": "uint256", "name": "value"},
			{"type": "bytes", "name": "data"},
			{"type": "bytes32", "name": "predecessor"},
			{"type": "bytes32", "name": "salt"}
		],
		"name": "hashOperation",
		"outputs": [{"type": "bytes32", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "bytes32", "name": "id"}],
		"name": "getTimestamp",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getMinDelay",
		"outputs": [{"type": "uint256", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "bytes32", "name": "id"}],
		"name": "isOperation",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "bytes32", "name": "id"}],
		"name": "isOperationPending",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "bytes32", "name": "id"}],
		"name": "isOperationReady",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"type": "bytes32", "name": "id"}],
		"name": "isOperationDone",
		"outputs": [{"type": "bool", "name": ""}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var controllerABI = abiUtils.MustParse(ControllerABI)

// PackSchedule encodes a schedule call.
func PackSchedule(target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash, delay *big.Int) ([]byte, error) {
	return controllerABI.Pack("schedule", target, value, data, predecessor, salt, delay)
}

// PackExecute encodes an execute call.
func PackExecute(target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash) ([]byte, error) {
	return controllerABI.Pack("execute", target, value, data, predecessor, salt)
}

// PackCancel encodes a cancel call.
func PackCancel(id common.Hash) ([]byte, error) {
	return controllerABI.Pack("cancel", id)
}

// PackUpdateDelay encodes an updateDelay call. Only the controller itself may
// perform it, so the packed bytes are only useful as a scheduled operation
// targeting the controller.
func PackUpdateDelay(newDelay *big.Int) ([]byte, error) {
	return controllerABI.Pack("updateDelay", newDelay)
}

// PackGrantRole encodes a grantRole call.
func PackGrantRole(role common.Hash, account common.Address) ([]byte, error) {
	return controllerABI.Pack("grantRole", role, account)
}

// PackRevokeRole encodes a revokeRole call.
func PackRevokeRole(role common.Hash, account common.Address) ([]byte, error) {
	return controllerABI.Pack("revokeRole", role, account)
}
