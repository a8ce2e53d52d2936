package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecordSyncMessage asks the worker to push one locally-stored record to the
// cloud sheet. It carries only the row ID; the worker reads the full record
// from the database so the payload never goes stale.
type RecordSyncMessage struct {
	MessageID string    `json:"message_id"`
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(recordID int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		MessageID: uuid.NewString(),
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
