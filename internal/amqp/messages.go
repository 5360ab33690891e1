package amqp

import (
	"encoding/json"
	"time"
)

// RecordEventMessage notifies the worker that a financial record changed.
// It carries identifiers only; the worker re-reads the record from the
// database so stale queue contents never overwrite fresh data.
type RecordEventMessage struct {
	Entity     string    `json:"entity"` // "transaction" or "salary"
	Action     string    `json:"action"` // "created", "updated", "deleted"
	RecordID   int64     `json:"record_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewRecordEventMessage(entity, action string, recordID, userID int64) *RecordEventMessage {
	return &RecordEventMessage{
		Entity:     entity,
		Action:     action,
		RecordID:   recordID,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
}

func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
