package dataset

import (
	"context"
	"os"

	objstore "github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Source yields the raw bytes of the dataset.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}

// ObjectDownloader is the part of the object-storage repository a remote
// source needs.
type ObjectDownloader interface {
	Download(ctx context.Context, bucket, objectKey string) (*objstore.DownloadResult, error)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "dataset file not found").WithDetail(s.Path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to read dataset file").WithDetail(s.Path)
	}
	return data, nil
}

// ObjectSource reads an object from MinIO.
type ObjectSource struct {
	Repo   ObjectDownloader
	Bucket string
	Key    string
}

func (s ObjectSource) Read(ctx context.Context) ([]byte, error) {
	if s.Repo == nil {
		return nil, errors.New(errors.ErrCodeDatasetUnavailable, "object storage is not configured").
			WithDetail(s.Bucket + "/" + s.Key)
	}
	res, err := s.Repo.Download(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to download dataset")
	}
	return res.Data, nil
}

// SourceFor returns the Source matching loc.  repo may be nil for local
// locations.
func SourceFor(loc Location, repo ObjectDownloader) Source {
	if loc.Remote() {
		return ObjectSource{Repo: repo, Bucket: loc.Bucket, Key: loc.Key}
	}
	return FileSource{Path: loc.Path}
}

//Personal.AI order the ending
