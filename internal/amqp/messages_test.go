package amqp

import (
	"testing"
	"time"
)

func TestNewStatementIngestedMessage(t *testing.T) {
	msg := NewStatementIngestedMessage(42, 7)

	if msg.StatementID != 42 {
		t.Errorf("StatementID = %v, want 42", msg.StatementID)
	}
	if msg.OwnerID != 7 {
		t.Errorf("OwnerID = %v, want 7", msg.OwnerID)
	}
	if msg.BatchID == "" {
		t.Error("BatchID should be set")
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestStatementIngestedMessage_JSON(t *testing.T) {
	msg := &StatementIngestedMessage{
		StatementID: 42,
		OwnerID:     7,
		BatchID:     "b-123",
		Timestamp:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := StatementIngestedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("StatementIngestedMessageFromJSON() error = %v", err)
	}
	if parsed.StatementID != msg.StatementID || parsed.OwnerID != msg.OwnerID || parsed.BatchID != msg.BatchID {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestStatementIngestedMessage_InvalidJSON(t *testing.T) {
	if _, err := StatementIngestedMessageFromJSON([]byte(`{"statement_id": "nope"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
