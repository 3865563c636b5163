// Package redis wraps go-redis for the dashboard's shared state: the
// distributed request rate limiter used when several dashboard replicas sit
// behind one load balancer.
package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// ErrClientClosed is returned by every command after Close.
var ErrClientClosed = errors.New(errors.ErrCodeInternal, "redis client is closed")

// Deployment modes.
const (
	ModeStandalone = "standalone"
	ModeSentinel   = "sentinel"
	ModeCluster    = "cluster"
)

// RedisConfig is the redis section of the dashboard configuration.
type RedisConfig struct {
	Mode string `mapstructure:"mode"`
	// Addr is the server of standalone mode.
	Addr string `mapstructure:"addr"`
	// MasterName and SentinelAddrs select the sentinel-managed primary.
	MasterName    string   `mapstructure:"master_name"`
	SentinelAddrs []string `mapstructure:"sentinel_addrs"`
	// ClusterAddrs seed cluster mode.
	ClusterAddrs []string `mapstructure:"cluster_addrs"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`

	TLSEnabled  bool   `mapstructure:"tls_enabled"`
	TLSCAFile   string `mapstructure:"tls_ca_file"`
	TLSInsecure bool   `mapstructure:"tls_insecure"`
}

// Client is a connected go-redis client shared by the rate limiter and the
// readiness check.
type Client struct {
	rdb    redis.UniversalClient
	mode   string
	logger logging.Logger
	closed atomic.Bool
}

// NewClient connects according to cfg.Mode and verifies the connection with
// PING.
func NewClient(cfg *RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(cfg)

	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, err
	}

	opts := &redis.UniversalOptions{
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
		TLSConfig:    tlsConfig,
	}

	var rdb redis.UniversalClient
	target := cfg.Addr
	switch cfg.Mode {
	case ModeCluster:
		opts.Addrs = cfg.ClusterAddrs
		rdb = redis.NewClusterClient(opts.Cluster())
		target = strings.Join(cfg.ClusterAddrs, ",")
	case ModeSentinel:
		opts.Addrs = cfg.SentinelAddrs
		opts.MasterName = cfg.MasterName
		rdb = redis.NewFailoverClient(opts.Failover())
		target = cfg.MasterName
	case ModeStandalone:
		opts.Addrs = []string{cfg.Addr}
		rdb = redis.NewClient(opts.Simple())
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unknown redis mode").WithDetail(cfg.Mode)
	}

	c := &Client{rdb: rdb, mode: cfg.Mode, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis connection failed").WithDetail(target)
	}

	log.Info("redis client connected", logging.String("mode", cfg.Mode), logging.String("target", target))
	return c, nil
}

func applyDefaults(cfg *RedisConfig) {
	if cfg.Mode == "" {
		cfg.Mode = ModeStandalone
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
}

func buildTLSConfig(cfg *RedisConfig) (*tls.Config, error) {
	if !cfg.TLSEnabled {
		return nil, nil
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.TLSInsecure,
	}
	if cfg.TLSCAFile != "" {
		pem, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read redis CA file").WithDetail(cfg.TLSCAFile)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New(errors.ErrCodeValidation, "redis CA file holds no certificate").WithDetail(cfg.TLSCAFile)
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}

// Mode reports the deployment mode the client was built for.
func (c *Client) Mode() string { return c.mode }

func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("failed to close redis client", logging.Err(err))
		return err
	}
	c.logger.Info("closed redis client")
	return nil
}

// Name identifies the client in readiness reports.
func (c *Client) Name() string { return "redis" }

// Check implements the readiness check.
func (c *Client) Check(ctx context.Context) error { return c.Ping(ctx) }

// RunScript executes s with EVALSHA, falling back to EVAL on a script-cache
// miss.
func (c *Client) RunScript(ctx context.Context, s *redis.Script, keys []string, args ...interface{}) *redis.Cmd {
	if c.closed.Load() {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return s.Run(ctx, c.rdb, keys, args...)
}

//Personal.AI order the ending
