package minio

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// ObjectAPI is the part of the MinIO SDK the dashboard calls.  GetObject
// returns an io.ReadCloser so tests can hand back any reader.
type ObjectAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type sdk struct{ *minio.Client }

func (s sdk) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return s.Client.GetObject(ctx, bucket, key, opts)
}

// MinIOConfig locates the object store holding the indicator spreadsheet and
// receiving exported charts.
type MinIOConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// Empty keys fall back to MINIO_ROOT_USER/MINIO_ROOT_PASSWORD and then
	// AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY.
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	// ExportBucket is created on first upload.
	ExportBucket string `mapstructure:"export_bucket"`
}

var ErrMinIOClientClosed = errors.New(errors.ErrCodeInternal, "minio client is closed")

// MinIOClient is a verified SDK connection.
type MinIOClient struct {
	api    ObjectAPI
	cfg    MinIOConfig
	logger logging.Logger
	closed atomic.Bool
}

func credentialsFor(cfg *MinIOConfig) *credentials.Credentials {
	if cfg.AccessKeyID != "" {
		return credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvMinio{},
		&credentials.EnvAWS{},
	})
}

// NewMinIOClient dials cfg.Endpoint and lists buckets once to prove the
// credentials.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint is required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentialsFor(cfg),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid minio endpoint").WithDetail(cfg.Endpoint)
	}

	c := newClientWithAPI(sdk{mc}, cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if _, err := c.api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "minio unreachable").WithDetail(cfg.Endpoint)
	}
	c.logger.Info("minio connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClientWithAPI(api ObjectAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{api: api, cfg: *cfg, logger: log.Named("minio")}
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ExportBucket == "" {
		cfg.ExportBucket = "trilemma-exports"
	}
}

// sdkAPI returns the SDK, or ErrMinIOClientClosed after Close.
func (c *MinIOClient) sdkAPI() (ObjectAPI, error) {
	if c.closed.Load() {
		return nil, ErrMinIOClientClosed
	}
	return c.api, nil
}

func (c *MinIOClient) ExportBucket() string { return c.cfg.ExportBucket }

// EnsureBucket creates bucket in the configured region when it is missing.
func (c *MinIOClient) EnsureBucket(ctx context.Context, bucket string) error {
	api, err := c.sdkAPI()
	if err != nil {
		return err
	}
	ok, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to look up bucket").WithDetail(bucket)
	}
	if ok {
		return nil
	}
	if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create bucket").WithDetail(bucket)
	}
	c.logger.Info("bucket created", logging.String("bucket", bucket))
	return nil
}

// Close is idempotent.  The SDK keeps no connection to release.
func (c *MinIOClient) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *MinIOClient) Name() string { return "minio" }

// Check lists buckets; it backs the readiness check.
func (c *MinIOClient) Check(ctx context.Context) error {
	api, err := c.sdkAPI()
	if err != nil {
		return err
	}
	if _, err := api.ListBuckets(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "minio health check failed").WithDetail(c.cfg.Endpoint)
	}
	return nil
}

//Personal.AI order the ending
