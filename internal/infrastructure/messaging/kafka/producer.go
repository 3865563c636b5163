package kafka

import (
	"context"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeServiceUnavailable, "producer closed")

type ProducerConfig struct {
	Brokers []string `mapstructure:"brokers"`
	// Acks is "none", "one" (default) or "all".
	Acks            string        `mapstructure:"acks"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	MaxMessageBytes int           `mapstructure:"max_message_bytes"`
	// CompressionCodec is gzip, snappy, lz4, zstd or empty for none.
	CompressionCodec string        `mapstructure:"compression"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`

	SecurityConfig `mapstructure:",squash"`

	// AsyncErrorHandler and AsyncSuccessHandler receive PublishAsync
	// outcomes.  Without an error handler failures are logged.
	AsyncErrorHandler   func(err error, msg *ProducerMessage) `mapstructure:"-"`
	AsyncSuccessHandler func(msg *ProducerMessage)            `mapstructure:"-"`
}

// ProducerMetrics are cumulative since NewProducer.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
}

// WriterInterface is the subset of *kafka.Writer the producer drives.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer writes dashboard events.  Keys are hashed to partitions so all
// events of one state stay ordered.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	metrics *ProducerMetrics
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)

	// mu orders PublishAsync admissions against Close so inflight.Add
	// never races inflight.Wait.
	mu       sync.Mutex
	closed   atomic.Bool
	inflight sync.WaitGroup
}

// NewProducer connects lazily: nothing is dialled before the first write
// or Check.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	mech, err := cfg.mechanism()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	applyProducerDefaults(&cfg)

	tlsCfg := cfg.tlsConfig()
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		RequiredAcks: requiredAcks(cfg.Acks),
		Compression:  compression(cfg.CompressionCodec),
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second, TLS: tlsCfg, SASL: mech},
	}
	d := &kafka.Dialer{Timeout: 5 * time.Second, DualStack: true, TLS: tlsCfg, SASLMechanism: mech}

	return &Producer{
		writer:  w,
		config:  cfg,
		logger:  logger.Named("kafka-producer"),
		metrics: &ProducerMetrics{},
		dial: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return d.DialContext(ctx, network, addr)
		},
	}, nil
}

func applyProducerDefaults(cfg *ProducerConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1 << 20
	}
	cfg.BatchTimeout = orDefault(cfg.BatchTimeout, 50*time.Millisecond)
	cfg.WriteTimeout = orDefault(cfg.WriteTimeout, 10*time.Second)
	cfg.ReadTimeout = orDefault(cfg.ReadTimeout, 10*time.Second)
}

var acksByName = map[string]kafka.RequiredAcks{
	"none": kafka.RequireNone,
	"one":  kafka.RequireOne,
	"all":  kafka.RequireAll,
}

func requiredAcks(name string) kafka.RequiredAcks {
	if a, ok := acksByName[name]; ok {
		return a
	}
	return kafka.RequireOne
}

var codecsByName = map[string]kafka.Compression{
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

func compression(name string) kafka.Compression {
	return codecsByName[name]
}

func (p *Producer) check(msg *ProducerMessage) error {
	switch {
	case msg == nil || msg.Topic == "":
		return errors.New(errors.ErrCodeValidation, "topic required")
	case len(msg.Value) == 0:
		return errors.New(errors.ErrCodeValidation, "value required")
	case len(msg.Value) > p.config.MaxMessageBytes:
		return errors.Newf(errors.ErrCodeValidation, "message of %d bytes exceeds limit %d", len(msg.Value), p.config.MaxMessageBytes)
	}
	return nil
}

// Publish blocks until the broker acknowledges msg.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	return p.publish(ctx, msg)
}

// publish writes msg without the closed check; PublishAsync admitted it
// before Close.
func (p *Producer) publish(ctx context.Context, msg *ProducerMessage) error {
	if err := p.check(msg); err != nil {
		return err
	}
	start := time.Now()
	if err := p.writer.WriteMessages(ctx, outbound(msg)); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "publish failed").WithDetail(msg.Topic)
	}
	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.metrics.LastSentAt.Store(time.Now())
	p.logger.Debug("published", logging.String("topic", msg.Topic), logging.Duration("latency", time.Since(start)))
	return nil
}

// PublishAsync writes msg in the background.  The write keeps ctx's values
// but not its cancellation, and Close waits for it.
func (p *Producer) PublishAsync(ctx context.Context, msg *ProducerMessage) {
	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		p.asyncFailed(ErrProducerClosed, msg)
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.WriteTimeout)
		defer cancel()
		if err := p.publish(wctx, msg); err != nil {
			p.asyncFailed(err, msg)
		} else if p.config.AsyncSuccessHandler != nil {
			p.config.AsyncSuccessHandler(msg)
		}
	}()
}

func (p *Producer) asyncFailed(err error, msg *ProducerMessage) {
	if h := p.config.AsyncErrorHandler; h != nil {
		h(err, msg)
		return
	}
	p.logger.Warn("async publish failed", logging.Err(err))
}

// GetMetrics copies the counters.
func (p *Producer) GetMetrics() ProducerMetrics {
	var m ProducerMetrics
	m.MessagesSent.Store(p.metrics.MessagesSent.Load())
	m.MessagesFailed.Store(p.metrics.MessagesFailed.Load())
	m.BytesSent.Store(p.metrics.BytesSent.Load())
	if t := p.metrics.LastSentAt.Load(); t != nil {
		m.LastSentAt.Store(t)
	}
	return m
}

func (p *Producer) Name() string { return "kafka" }

// Check succeeds once any broker accepts a connection.
func (p *Producer) Check(ctx context.Context) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if p.dial == nil {
		return nil
	}
	var last error
	for _, addr := range p.config.Brokers {
		conn, err := p.dial(ctx, "tcp", addr)
		if err == nil {
			return conn.Close()
		}
		last = err
	}
	return errors.Wrap(last, errors.ErrCodeServiceUnavailable, "no kafka broker reachable")
}

// Close drains PublishAsync writes before closing the writer.  Only the
// first call does any work.
func (p *Producer) Close() error {
	p.mu.Lock()
	already := p.closed.Swap(true)
	p.mu.Unlock()
	if already {
		return nil
	}
	p.inflight.Wait()
	p.logger.Info("producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return p.writer.Close()
}

func outbound(msg *ProducerMessage) kafka.Message {
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafka.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafka.Header{Key: k, Value: []byte(msg.Headers[k])}
	}

	at := msg.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	return kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Time:      at,
	}
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max_retries must be >= 0")
	}
	return cfg.SecurityConfig.validate()
}

//Personal.AI order the ending
