package kafka

import (
	"context"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
)

// AsyncPublisher is the part of Producer the view publisher needs.
type AsyncPublisher interface {
	PublishAsync(ctx context.Context, msg *ProducerMessage)
}

// PublishObserver is told the outcome of every envelope handed to Kafka.
type PublishObserver func(topic string, err error)

// ViewEventPublisher sends dashboard.ViewComputedEvent to Kafka.  Writes are
// asynchronous so a slow broker never delays a page render.
type ViewEventPublisher struct {
	producer AsyncPublisher
	topic    string
	source   string
	observe  PublishObserver
	logger   logging.Logger
}

var _ dashboard.EventPublisher = (*ViewEventPublisher)(nil)

// NewViewEventPublisher returns a publisher writing to topic.  observe may be
// nil.
func NewViewEventPublisher(producer AsyncPublisher, topic, source string, observe PublishObserver, logger logging.Logger) *ViewEventPublisher {
	if topic == "" {
		topic = TopicViewComputed
	}
	if source == "" {
		source = "trilemma-dashboard"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ViewEventPublisher{
		producer: producer,
		topic:    topic,
		source:   source,
		observe:  observe,
		logger:   logger,
	}
}

// PublishViewComputed encodes evt and queues it keyed by state, so every
// event for one state lands on the same partition.  Only encoding failures
// are returned; delivery failures surface through the observer.
func (p *ViewEventPublisher) PublishViewComputed(ctx context.Context, evt *dashboard.ViewComputedEvent) error {
	env, err := NewEventEnvelope(EventTypeViewComputed, p.source, evt)
	if err != nil {
		p.notify(err)
		return err
	}
	if evt.EventID != "" {
		env.EventID = evt.EventID
	}
	if !evt.ComputedAt.IsZero() {
		env.Timestamp = evt.ComputedAt
	}
	env.TraceID = logging.RequestIDFromContext(ctx)

	msg, err := env.ToMessage(p.topic, evt.State)
	if err != nil {
		p.notify(err)
		return err
	}
	p.producer.PublishAsync(ctx, msg)
	return nil
}

func (p *ViewEventPublisher) notify(err error) {
	if p.observe != nil {
		p.observe(p.topic, err)
	}
}

// AsyncResultHandler adapts a PublishObserver to ProducerConfig.AsyncErrorHandler.
func AsyncResultHandler(observe PublishObserver, logger logging.Logger) func(error, *ProducerMessage) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(err error, msg *ProducerMessage) {
		topic := ""
		if msg != nil {
			topic = msg.Topic
		}
		logger.Warn("view event not delivered", logging.String("topic", topic), logging.Err(err))
		if observe != nil {
			observe(topic, err)
		}
	}
}

//Personal.AI order the ending
