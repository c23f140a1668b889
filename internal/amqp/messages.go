package amqp

import (
	"encoding/json"
	"time"
)

// StatementImportedMessage notifies the extraction worker that a statement
// was persisted. It carries only the statement ID and month; the worker
// fetches the merchant strings from the database.
type StatementImportedMessage struct {
	StatementID int64     `json:"statementId"`
	Month       string    `json:"month"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewStatementImportedMessage creates a message for a freshly persisted statement
func NewStatementImportedMessage(statementID int64, month string) *StatementImportedMessage {
	return &StatementImportedMessage{
		StatementID: statementID,
		Month:       month,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatementImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func StatementImportedMessageFromJSON(data []byte) (*StatementImportedMessage, error) {
	var msg StatementImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
