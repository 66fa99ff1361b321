package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Event is a journal entry emitted by a contract. The journal is truncated
// on revert together with all other state, so tests can assert on exactly
// the events of committed transactions.
type Event struct {
	Address common.Address
	Name    string
	Fields  map[string]any
}

// NewEvent builds an event from alternating key/value pairs.
func NewEvent(addr common.Address, name string, kvs ...any) Event {
	fields := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			key = fmt.Sprint(kvs[i])
		}
		fields[key] = kvs[i+1]
	}

	return Event{Address: addr, Name: name, Fields: fields}
}

// Field returns the named field, or nil when absent.
func (e Event) Field(key string) any {
	return e.Fields[key]
}
