package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"drivefin/internal/storage"
)

// Op says what happened to a record.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// RecordEvent announces that a stored record changed. It carries only the
// record's identity; consumers load the current body from storage.
type RecordEvent struct {
	Kind      storage.Kind `json:"kind"`
	ID        string       `json:"id"`
	Op        Op           `json:"op"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewRecordEvent(kind storage.Kind, id string, op Op) RecordEvent {
	return RecordEvent{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses and checks an event body.
func RecordEventFromJSON(data []byte) (RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return RecordEvent{}, err
	}
	if !e.Kind.Valid() {
		return RecordEvent{}, fmt.Errorf("unknown record kind %q", e.Kind)
	}
	if e.ID == "" {
		return RecordEvent{}, fmt.Errorf("event without record id")
	}
	if e.Op != OpUpsert && e.Op != OpDelete {
		return RecordEvent{}, fmt.Errorf("unknown op %q", e.Op)
	}
	return e, nil
}
