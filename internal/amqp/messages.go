package amqp

import (
	"encoding/json"
	"time"
)

// TransactionExportMessage asks the worker to push one stored transaction to
// the export sheet. It carries only the id and version; the worker fetches
// the full record from storage.
type TransactionExportMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionExportMessage(id string, version int64) *TransactionExportMessage {
	return &TransactionExportMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *TransactionExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionExportMessageFromJSON(data []byte) (*TransactionExportMessage, error) {
	var msg TransactionExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
