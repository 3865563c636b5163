package kafka

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// AdminConn is the subset of *kafka.Conn used for topic provisioning.
type AdminConn interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager provisions the topics the dashboard publishes to.
type TopicManager struct {
	conn   AdminConn
	logger logging.Logger
}

// NewTopicManager dials the first reachable broker.
func NewTopicManager(ctx context.Context, brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var lastErr error
	for _, b := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err == nil {
			return &TopicManager{conn: conn, logger: logger}, nil
		}
		lastErr = err
		logger.Warn("kafka broker unreachable", logging.String("broker", b), logging.Err(err))
	}
	return nil, errors.Wrap(lastErr, errors.ErrCodeServiceUnavailable, "no kafka broker reachable")
}

// ViewTopic is the TopicConfig of the view event stream, retained for a week.
func ViewTopic(name string, partitions, replication int) TopicConfig {
	if name == "" {
		name = TopicViewComputed
	}
	if partitions <= 0 {
		partitions = 3
	}
	if replication <= 0 {
		replication = 1
	}
	return TopicConfig{Name: name, Partitions: partitions, Replication: replication, Retention: 7 * 24 * time.Hour}
}

// Provision creates every missing topic in one request.  Topics that already
// have partitions are left as they are.
func (m *TopicManager) Provision(ctx context.Context, topics ...TopicConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var missing []kafka.TopicConfig
	for _, t := range topics {
		if err := t.validate(); err != nil {
			return err
		}
		if m.exists(t.Name) {
			m.logger.Debug("kafka topic present", logging.String("topic", t.Name))
			continue
		}
		missing = append(missing, t.toKafka())
	}
	if len(missing) == 0 {
		return nil
	}
	if err := m.conn.CreateTopics(missing...); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create kafka topics").WithDetail(missing[0].Topic)
	}
	for _, t := range missing {
		m.logger.Info("kafka topic created", logging.String("topic", t.Topic), logging.Int("partitions", t.NumPartitions))
	}
	return nil
}

// exists treats a metadata error as absence; CreateTopics reports the real
// failure if there is one.
func (m *TopicManager) exists(name string) bool {
	partitions, err := m.conn.ReadPartitions(name)
	return err == nil && len(partitions) > 0
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

func (t TopicConfig) validate() error {
	switch {
	case t.Name == "":
		return errors.New(errors.ErrCodeValidation, "topic name required")
	case t.Partitions <= 0:
		return errors.New(errors.ErrCodeValidation, "topic partitions must be positive").WithDetail(t.Name)
	case t.Replication <= 0:
		return errors.New(errors.ErrCodeValidation, "topic replication must be positive").WithDetail(t.Name)
	}
	return nil
}

func (t TopicConfig) toKafka() kafka.TopicConfig {
	kc := kafka.TopicConfig{
		Topic:             t.Name,
		NumPartitions:     t.Partitions,
		ReplicationFactor: t.Replication,
	}
	if t.Retention > 0 {
		kc.ConfigEntries = append(kc.ConfigEntries, kafka.ConfigEntry{
			ConfigName:  "retention.ms",
			ConfigValue: strconv.FormatInt(t.Retention.Milliseconds(), 10),
		})
	}
	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kc.ConfigEntries = append(kc.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: t.Extra[k]})
	}
	return kc
}

//Personal.AI order the ending
