package quorum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/bastion-gov/bastion/internal/utils/abi"
)

// WalletABI is the dispatch surface of the quorum wallet.
const WalletABI = `[
	{"type":"function","name":"propose","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[{"name":"txID","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"txID","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"execute","stateMutability":"nonpayable","inputs":[{"name":"txID","type":"uint256"}],"outputs":[{"name":"ok","type":"bool"},{"name":"returnData","type":"bytes"}]},
	{"type":"function","name":"getTransaction","stateMutability":"view","inputs":[{"name":"txID","type":"uint256"}],"outputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},{"name":"executed","type":"bool"},{"name":"approvals","type":"uint256"}]},
	{"type":"function","name":"hasApproved","stateMutability":"view","inputs":[{"name":"txID","type":"uint256"},{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isOwner","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"owners","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"threshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transactionCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

var walletABI = abiUtils.MustParse(WalletABI)

// PackPropose encodes a propose call for the wallet.
func PackPropose(target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = big.NewInt(0)
	}
	if data == nil {
		data = []byte{}
	}

	return walletABI.Pack("propose", target, value, data)
}

// PackApprove encodes an approve call for the wallet.
func PackApprove(txID uint64) ([]byte, error) {
	return walletABI.Pack("approve", new(big.Int).SetUint64(txID))
}

// PackExecute encodes an execute call for the wallet.
func PackExecute(txID uint64) ([]byte, error) {
	return walletABI.Pack("execute", new(big.Int).SetUint64(txID))
}
