// Package abi wraps go-ethereum's ABI machinery with the helpers the
// governance components share: abi.encode / abi.decode equivalents for
// operation hashing, and 4-byte selector dispatch for contract calls.
package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Encode is the equivalent of abi.encode.
//
// Operation ids and signing hashes are keccak256 over these encodings, so the
// on-chain components and the off-chain proposal layer must agree on a single
// encoder.
// See a full set of examples https://github.com/ethereum/go-ethereum/blob/420b78659bef661a83c5c442121b13f13288c09f/accounts/abi/packing_test.go#L31
func Encode(abiStr string, values ...any) ([]byte, error) {
	// Create a dummy method with arguments
	inDef := fmt.Sprintf(`[{ "name" : "method", "type": "function", "inputs": %s}]`, abiStr)
	inAbi, err := abi.JSON(strings.NewReader(inDef))
	if err != nil {
		return nil, err
	}

	res, err := inAbi.Pack("method", values...)
	if err != nil {
		return nil, err
	}

	return res[4:], nil
}

// Decode is the equivalent of abi.decode.
func Decode(abiStr string, data []byte) ([]any, error) {
	inDef := fmt.Sprintf(`[{ "name" : "method", "type": "function", "outputs": %s}]`, abiStr)
	inAbi, err := abi.JSON(strings.NewReader(inDef))
	if err != nil {
		return nil, err
	}

	return inAbi.Unpack("method", data)
}

// MustParse parses a contract ABI definition, panicking on malformed JSON.
// Contract packages call it once at package init to build dispatch tables.
func MustParse(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI definition: %v", err))
	}

	return parsed
}

// MethodFor resolves calldata against a contract ABI by its 4-byte selector
// and unpacks the call arguments.
func MethodFor(contract abi.ABI, input []byte) (*abi.Method, []any, error) {
	if len(input) < 4 {
		return nil, nil, fmt.Errorf("calldata too short: %d bytes", len(input))
	}

	method, err := contract.MethodById(input[:4])
	if err != nil {
		return nil, nil, err
	}

	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("unpack %s arguments: %w", method.Name, err)
	}

	return method, args, nil
}

// PackResult packs a method's return values into ABI-encoded bytes.
func PackResult(method *abi.Method, values ...any) ([]byte, error) {
	out, err := method.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("pack %s result: %w", method.Name, err)
	}

	return out, nil
}
