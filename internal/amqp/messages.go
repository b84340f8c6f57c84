package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budgetik/internal/core"
	"budgetik/internal/store"
)

// ChangeMessage announces that one account changed. It carries no
// transaction data; receivers re-read the store.
type ChangeMessage struct {
	Account   core.Account `json:"account"`
	Op        string       `json:"op"`
	ID        string       `json:"id,omitempty"`
	Source    string       `json:"source"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewChangeMessage(change store.Change, source string, now time.Time) *ChangeMessage {
	return &ChangeMessage{
		Account:   change.Account,
		Op:        change.Op,
		ID:        change.ID,
		Source:    source,
		Timestamp: now,
	}
}

// Change converts the message back to a store change.
func (m *ChangeMessage) Change() store.Change {
	return store.Change{Account: m.Account, Op: m.Op, ID: m.ID}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and rejects anything that does not
// name a concrete account.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Account.IsConcrete() {
		return nil, fmt.Errorf("change message account %q: %w", msg.Account, core.ErrInvalidAccount)
	}
	return &msg, nil
}
