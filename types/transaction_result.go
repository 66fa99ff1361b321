package types

// TransactionResult is the committed outcome of a state-changing call driven
// through a chain executor.
type TransactionResult struct {
	Hash        string `json:"hash"`
	ChainFamily string `json:"chainFamily"`

	// RawData carries the executor-specific record of what ran. Users cast
	// it to the executor's transaction type.
	RawData any `json:"tx"`
}
