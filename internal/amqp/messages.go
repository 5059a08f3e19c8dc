package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StatementIngestedMessage announces a freshly committed statement batch.
// It carries only identifiers; the worker fetches the full statement from
// the database before exporting it.
type StatementIngestedMessage struct {
	StatementID int64     `json:"statement_id"`
	OwnerID     int64     `json:"owner_id"`
	BatchID     string    `json:"batch_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewStatementIngestedMessage(statementID, ownerID int64) *StatementIngestedMessage {
	return &StatementIngestedMessage{
		StatementID: statementID,
		OwnerID:     ownerID,
		BatchID:     uuid.NewString(),
		Timestamp:   time.Now(),
	}
}

func (m *StatementIngestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StatementIngestedMessageFromJSON(data []byte) (*StatementIngestedMessage, error) {
	var msg StatementIngestedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
