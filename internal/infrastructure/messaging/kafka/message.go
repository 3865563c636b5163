// Package kafka publishes dashboard events to Kafka and reads them back for
// the CLI event tail.  It is built on segmentio/kafka-go; callers depend on
// the Producer and Consumer types and never on kafka-go directly.
package kafka

import (
	"context"
	"time"
)

// ProducerMessage is an outbound record.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
	Partition int
}

// Message is an inbound record handed to a MessageHandler.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed message.  A non-nil error triggers a
// retry with backoff.
type MessageHandler func(ctx context.Context, msg *Message) error

// TopicConfig describes a topic Provision creates when it is missing.
type TopicConfig struct {
	Name        string
	Partitions  int
	Replication int
	// Retention becomes retention.ms; zero keeps the broker default.
	Retention time.Duration
	// Extra holds further topic-level settings such as cleanup.policy.
	Extra map[string]string
}

//Personal.AI order the ending
