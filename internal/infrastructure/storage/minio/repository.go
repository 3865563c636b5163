package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// maxObjectSize bounds downloads; indicator spreadsheets are a few hundred KB.
const maxObjectSize = 64 << 20

// ObjectStorageRepository reads the dataset object and stores exports.
type ObjectStorageRepository interface {
	Download(ctx context.Context, bucket, objectKey string) (*DownloadResult, error)
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
}

// UploadRequest describes an object to store.
type UploadRequest struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// UploadResult describes a stored object.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// DownloadResult is a fully read object.
type DownloadResult struct {
	Data         []byte
	ContentType  string
	Size         int64
	ETag         string
	LastModified time.Time
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

// NewMinIORepository builds an ObjectStorageRepository on client.
func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectStorageRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: log.Named("minio_repository")}
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

// Download reads the whole object into memory.
func (r *minioRepository) Download(ctx context.Context, bucket, objectKey string) (*DownloadResult, error) {
	if bucket == "" || objectKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "bucket and object key are required")
	}
	api, err := r.client.sdkAPI()
	if err != nil {
		return nil, err
	}

	info, err := api.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "object not found").WithDetail(bucket + "/" + objectKey)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to stat object").WithDetail(bucket + "/" + objectKey)
	}
	if info.Size > maxObjectSize {
		return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "object is %d bytes, limit is %d", info.Size, maxObjectSize)
	}

	body, err := api.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to get object").WithDetail(bucket + "/" + objectKey)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxObjectSize+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to read object").WithDetail(bucket + "/" + objectKey)
	}

	r.logger.Debug("object downloaded",
		logging.String("bucket", bucket),
		logging.String("key", objectKey),
		logging.Int("bytes", len(data)),
	)
	return &DownloadResult{
		Data:         data,
		ContentType:  info.ContentType,
		Size:         int64(len(data)),
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Upload stores req.Data, creating the bucket when needed.
func (r *minioRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.Bucket == "" || req.ObjectKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "bucket and object key are required")
	}
	api, err := r.client.sdkAPI()
	if err != nil {
		return nil, err
	}
	if err := r.client.EnsureBucket(ctx, req.Bucket); err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := api.PutObject(ctx, req.Bucket, req.ObjectKey,
		bytes.NewReader(req.Data), int64(len(req.Data)),
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: req.Metadata},
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "upload failed").WithDetail(req.Bucket + "/" + req.ObjectKey)
	}

	r.logger.Info("object uploaded",
		logging.String("bucket", req.Bucket),
		logging.String("key", req.ObjectKey),
		logging.Int64("bytes", info.Size),
	)
	return &UploadResult{
		Bucket:     req.Bucket,
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Exists reports whether the object is present.
func (r *minioRepository) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	api, err := r.client.sdkAPI()
	if err != nil {
		return false, err
	}
	if _, err := api.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat object")
	}
	return true, nil
}

//Personal.AI order the ending
