package amqp

import (
	"testing"
	"time"
)

func TestNewStatementImportedMessage(t *testing.T) {
	msg := NewStatementImportedMessage(12345, "2024-03")

	if msg.StatementID != 12345 {
		t.Errorf("NewStatementImportedMessage() StatementID = %v, want %v", msg.StatementID, 12345)
	}
	if msg.Month != "2024-03" {
		t.Errorf("NewStatementImportedMessage() Month = %v, want %v", msg.Month, "2024-03")
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewStatementImportedMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewStatementImportedMessage() Timestamp should be recent")
	}
}

func TestStatementImportedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &StatementImportedMessage{
		StatementID: 12345,
		Month:       "2024-01",
		Timestamp:   timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := StatementImportedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("StatementImportedMessageFromJSON() error = %v", err)
	}

	if parsedMsg.StatementID != msg.StatementID {
		t.Errorf("Parsed StatementID = %v, want %v", parsedMsg.StatementID, msg.StatementID)
	}
	if parsedMsg.Month != msg.Month {
		t.Errorf("Parsed Month = %v, want %v", parsedMsg.Month, msg.Month)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestStatementImportedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"statementId": "not_a_number", "month": "2024-01"}`)

	_, err := StatementImportedMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("StatementImportedMessageFromJSON() should fail with invalid JSON")
	}
}
