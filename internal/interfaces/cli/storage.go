package cli

import (
	"context"

	"github.com/turtacn/Trilemma-Dashboard/internal/config"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/dataset"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	objstore "github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/storage/minio"
)

// objectStore is the MinIO connection shared by the dataset loader, the
// render command and the health check.
type objectStore struct {
	repo         objstore.ObjectStorageRepository
	exportBucket string
	health       func(ctx context.Context) error
	close        func() error
}

func (s *objectStore) Name() string { return "minio" }

func (s *objectStore) Check(ctx context.Context) error { return s.health(ctx) }

func (s *objectStore) Close() error { return s.close() }

// openObjectStore connects to MinIO when it is enabled and returns nil
// otherwise.  Tests replace it.
var openObjectStore = func(cfg *config.Config, logger logging.Logger) (*objectStore, error) {
	if !cfg.MinIO.Enabled {
		return nil, nil
	}
	mc := cfg.MinIO.MinIOConfig
	client, err := objstore.NewMinIOClient(&mc, logger)
	if err != nil {
		return nil, err
	}
	return &objectStore{
		repo:         objstore.NewMinIORepository(client, logger),
		exportBucket: client.ExportBucket(),
		health:       client.Check,
		close:        client.Close,
	}, nil
}

// loadTable reads the configured dataset.  store may be nil for local files.
func loadTable(ctx context.Context, cfg *config.Config, store *objectStore, logger logging.Logger) (*indicator.Table, error) {
	var repo dataset.ObjectDownloader
	if store != nil {
		repo = store.repo
	}
	loader, err := dataset.NewLoader(cfg.Dataset, repo, logger)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

//Personal.AI order the ending
