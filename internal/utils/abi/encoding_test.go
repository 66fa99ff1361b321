package abi

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Encode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		giveABI    string
		giveValues []any
		want       string
		wantError  bool
	}{
		{
			name:    "success: encode single uint256",
			giveABI: `[{"type":"uint256"}]`,
			giveValues: []any{
				big.NewInt(30),
			},
			want: "000000000000000000000000000000000000000000000000000000000000001e",
		},
		{
			name:       "success: encode address",
			giveABI:    `[{"type":"address"}]`,
			giveValues: []any{common.HexToAddress("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")},
			want:       "0000000000000000000000005b38da6a701c568545dcfcb03fcb875f56beddc4",
		},
		{
			name:       "success: encode bytes32 pair",
			giveABI:    `[{"type":"bytes32"},{"type":"bytes32"}]`,
			giveValues: []any{[32]byte{0x01}, [32]byte{0x02}},
			want: "0100000000000000000000000000000000000000000000000000000000000000" +
				"0200000000000000000000000000000000000000000000000000000000000000",
		},
		{
			name:      "failure: invalid ABI string",
			giveABI:   `[{"type":"invalid"}]`,
			wantError: true,
		},
		{
			name:       "failure: missing values",
			giveABI:    `[{"type":"uint256"}]`,
			giveValues: []any{},
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Encode(tt.giveABI, tt.giveValues...)

			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)

				wantBytes, err := hex.DecodeString(tt.want)
				require.NoError(t, err)
				assert.Equal(t, wantBytes, got)
			}
		})
	}
}

func Test_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveABI   string
		giveData  string
		want      []any
		wantError bool
	}{
		{
			name:     "success: decode single uint256",
			giveABI:  `[{"type":"uint256"}]`,
			giveData: "000000000000000000000000000000000000000000000000000000000000001e",
			want:     []any{big.NewInt(30)},
		},
		{
			name:     "success: decode address",
			giveABI:  `[{"type":"address"}]`,
			giveData: "0000000000000000000000005b38da6a701c568545dcfcb03fcb875f56beddc4",
			want:     []any{common.HexToAddress("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")},
		},
		{
			name:      "failure: invalid ABI string",
			giveABI:   `[{"type":"invalid"}]`,
			wantError: true,
		},
		{
			name:      "failure: truncated data",
			giveABI:   `[{"type":"uint256"}]`,
			giveData:  "001e",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := hex.DecodeString(tt.giveData)
			require.NoError(t, err)

			got, err := Decode(tt.giveABI, data)

			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

const counterABI = `[
	{
		"inputs": [{"type": "uint256", "name": "amount"}],
		"name": "add",
		"outputs": [{"type": "uint256", "name": ""}],
		"type": "function"
	},
	{
		"inputs": [],
		"name": "count",
		"outputs": [{"type": "uint256", "name": ""}],
		"type": "function"
	}
]`

func Test_MethodFor(t *testing.T) {
	t.Parallel()

	contract := MustParse(counterABI)

	addCall, err := contract.Pack("add", big.NewInt(7))
	require.NoError(t, err)

	tests := []struct {
		name      string
		giveInput []byte
		wantName  string
		wantArgs  []any
		wantError string
	}{
		{
			name:      "success: resolves method and unpacks arguments",
			giveInput: addCall,
			wantName:  "add",
			wantArgs:  []any{big.NewInt(7)},
		},
		{
			name:      "failure: calldata shorter than a selector",
			giveInput: []byte{0x01, 0x02},
			wantError: "calldata too short",
		},
		{
			name:      "failure: unknown selector",
			giveInput: []byte{0xde, 0xad, 0xbe, 0xef},
			wantError: "no method with id",
		},
		{
			name:      "failure: malformed arguments",
			giveInput: append(addCall[:4:4], 0x01),
			wantError: "unpack add arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			method, args, err := MethodFor(contract, tt.giveInput)

			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, method.Name)
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func Test_PackResult(t *testing.T) {
	t.Parallel()

	contract := MustParse(counterABI)
	method := contract.Methods["count"]

	got, err := PackResult(&method, big.NewInt(42))
	require.NoError(t, err)

	decoded, err := Decode(`[{"type":"uint256"}]`, got)
	require.NoError(t, err)
	assert.Equal(t, []any{big.NewInt(42)}, decoded)

	_, err = PackResult(&method, "not a number")
	require.ErrorContains(t, err, "pack count result")
}

func Test_MustParse_PanicsOnInvalidJSON(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustParse(`{not json`)
	})
}
