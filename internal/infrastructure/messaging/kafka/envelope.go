package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

const (
	TopicViewComputed     = "trilemma.view.computed"
	EventTypeViewComputed = "view.computed"
	SchemaVersion         = "v1"
)

// Header keys copied from the envelope onto every record.
const (
	HeaderEventType     = "event_type"
	HeaderSource        = "source_service"
	HeaderSchemaVersion = "schema_version"
	HeaderTraceID       = "trace_id"
)

// EventEnvelope is the JSON document stored as the record value.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope stamps payload with a fresh id and the current UTC time.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload").WithDetail(eventType)
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       raw,
	}, nil
}

// DecodePayload fills target; an empty or null payload leaves it untouched.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	switch string(e.Payload) {
	case "", "null":
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload").WithDetail(e.EventType)
	}
	return nil
}

// ToMessage serialises the envelope for topic.  An empty key leaves
// partitioning to the balancer.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope").WithDetail(e.EventID)
	}
	msg := &ProducerMessage{
		Topic:     topic,
		Value:     value,
		Headers:   e.headers(),
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

func (e *EventEnvelope) headers() map[string]string {
	h := map[string]string{
		HeaderEventType:     e.EventType,
		HeaderSource:        e.Source,
		HeaderSchemaVersion: e.SchemaVersion,
	}
	if e.TraceID != "" {
		h[HeaderTraceID] = e.TraceID
	}
	return h
}

// DecodeEnvelope parses a consumed record's value.
func DecodeEnvelope(msg *Message) (*EventEnvelope, error) {
	if msg == nil || len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "record has no value")
	}
	env := new(EventEnvelope)
	if err := json.Unmarshal(msg.Value, env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "record is not an event envelope").
			WithDetail(msg.Topic)
	}
	return env, nil
}

//Personal.AI order the ending
