package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeBadRequest, "consumer already running")
	ErrNoHandler      = errors.New(errors.ErrCodeValidation, "no handler subscribed")
)

// RetryConfig bounds the redelivery of a message whose handler failed.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// backoff returns the wait before retry n (0-based).
func (r RetryConfig) backoff(n int) time.Duration {
	d, ceiling := r.RetryBackoff, r.MaxRetryBackoff
	if d <= 0 {
		d = time.Second
	}
	if ceiling <= 0 {
		ceiling = 30 * time.Second
	}
	for ; n > 0 && d < ceiling; n-- {
		d *= 2
	}
	return min(d, ceiling)
}

type ConsumerConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
	Topics  []string `mapstructure:"topics"`
	// AutoOffsetReset is "earliest" (default) or "latest" and only applies
	// to a group without committed offsets.
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"`
	MaxWait         time.Duration `mapstructure:"max_wait"`
	SessionTimeout  time.Duration `mapstructure:"session_timeout"`
	Retry           RetryConfig   `mapstructure:"retry"`

	SecurityConfig `mapstructure:",squash"`
}

// ConsumerMetrics are cumulative since NewConsumer.
type ConsumerMetrics struct {
	MessagesConsumed  atomic.Int64
	MessagesProcessed atomic.Int64
	MessagesFailed    atomic.Int64
	MessagesRetried   atomic.Int64
	Lag               atomic.Int64
}

// ReaderInterface is the subset of *kafka.Reader the consumer drives.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// Consumer reads a consumer group and dispatches each record to the handler
// subscribed for its topic.  Every fetched record is committed, handled or
// not.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[string]MessageHandler

	running atomic.Bool
	stop    context.CancelFunc
	wg      sync.WaitGroup

	metrics *ConsumerMetrics
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	mech, err := cfg.mechanism()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	rc := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MaxWait:        orDefault(cfg.MaxWait, time.Second),
		SessionTimeout: orDefault(cfg.SessionTimeout, 30*time.Second),
		StartOffset:    kafka.FirstOffset,
		Dialer: &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mech,
		},
	}
	if cfg.AutoOffsetReset == "latest" {
		rc.StartOffset = kafka.LastOffset
	}
	return newConsumerWithReader(kafka.NewReader(rc), cfg, logger), nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func newConsumerWithReader(reader ReaderInterface, cfg ConsumerConfig, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:   reader,
		config:   cfg,
		logger:   logger.Named("kafka-consumer"),
		handlers: map[string]MessageHandler{},
		metrics:  &ConsumerMetrics{},
		sleep:    waitFor,
	}
}

func waitFor(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe sets the handler of topic.  A later call replaces it.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.logger.Info("subscribed", logging.String("topic", topic))
}

func (c *Consumer) handlerFor(topic string) (MessageHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[topic]
	return h, ok
}

// Start launches the fetch loop.  It returns at once; Close stops the loop.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	empty := len(c.handlers) == 0
	c.mu.RUnlock()
	if empty {
		return ErrNoHandler
	}
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	ctx, c.stop = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
	c.logger.Info("consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) run(ctx context.Context) {
	for ctx.Err() == nil {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			if c.sleep(ctx, time.Second) != nil {
				return
			}
			continue
		}
		c.metrics.MessagesConsumed.Add(1)
		c.metrics.Lag.Store(km.HighWaterMark - km.Offset)

		c.dispatch(ctx, km)

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.Err(err), logging.Int64("offset", km.Offset))
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, km kafka.Message) {
	handler, ok := c.handlerFor(km.Topic)
	if !ok {
		c.logger.Warn("no handler for topic", logging.String("topic", km.Topic))
		return
	}
	if err := c.handle(ctx, inbound(km), handler); err != nil {
		c.metrics.MessagesFailed.Add(1)
		return
	}
	c.metrics.MessagesProcessed.Add(1)
}

// handle runs handler once plus up to Retry.MaxRetries more times.
func (c *Consumer) handle(ctx context.Context, msg *Message, handler MessageHandler) error {
	err := handler(ctx, msg)
	for n := 0; err != nil && n < c.config.Retry.MaxRetries; n++ {
		c.metrics.MessagesRetried.Add(1)
		if werr := c.sleep(ctx, c.config.Retry.backoff(n)); werr != nil {
			return werr
		}
		err = handler(ctx, msg)
	}
	if err != nil {
		c.logger.Error("message dropped after retries",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
	}
	return err
}

func inbound(km kafka.Message) *Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Key:       km.Key,
		Value:     km.Value,
		Headers:   headers,
		Timestamp: km.Time,
	}
}

// GetMetrics copies the counters.
func (c *Consumer) GetMetrics() ConsumerMetrics {
	var m ConsumerMetrics
	m.MessagesConsumed.Store(c.metrics.MessagesConsumed.Load())
	m.MessagesProcessed.Store(c.metrics.MessagesProcessed.Load())
	m.MessagesFailed.Store(c.metrics.MessagesFailed.Load())
	m.MessagesRetried.Store(c.metrics.MessagesRetried.Load())
	m.Lag.Store(c.metrics.Lag.Load())
	return m
}

// Close stops a running loop and closes the reader.
func (c *Consumer) Close() error {
	if c.running.CompareAndSwap(true, false) {
		c.stop()
		c.wg.Wait()
	}
	c.logger.Info("consumer closed", logging.Int64("consumed", c.metrics.MessagesConsumed.Load()))
	return c.reader.Close()
}

func ValidateConsumerConfig(cfg ConsumerConfig) error {
	switch {
	case len(cfg.Brokers) == 0:
		return errors.New(errors.ErrCodeValidation, "brokers required")
	case cfg.GroupID == "":
		return errors.New(errors.ErrCodeValidation, "group_id required")
	case len(cfg.Topics) == 0:
		return errors.New(errors.ErrCodeValidation, "topics required")
	case cfg.Retry.MaxRetries < 0:
		return errors.New(errors.ErrCodeValidation, "max_retries must be >= 0")
	}
	switch cfg.AutoOffsetReset {
	case "", "earliest", "latest":
	default:
		return errors.Newf(errors.ErrCodeValidation, "invalid auto_offset_reset %q", cfg.AutoOffsetReset)
	}
	return cfg.SecurityConfig.validate()
}

//Personal.AI order the ending
