package minio

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

type RepositoryTestSuite struct {
	suite.Suite
	api  *mockObjectAPI
	repo ObjectStorageRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.api = new(mockObjectAPI)
	client := newClientWithAPI(s.api, &MinIOConfig{}, logging.NewNopLogger())
	s.repo = NewMinIORepository(client, logging.NewNopLogger())
}

func (s *RepositoryTestSuite) TestDownload_Success() {
	ctx := context.Background()
	s.api.On("StatObject", ctx, "data", "trilemma.xlsx", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{Size: 5, ETag: "etag", ContentType: "application/vnd.ms-excel"}, nil)
	s.api.On("GetObject", ctx, "data", "trilemma.xlsx", minio.GetObjectOptions{}).
		Return(io.NopCloser(bytes.NewReader([]byte("hello"))), nil)

	res, err := s.repo.Download(ctx, "data", "trilemma.xlsx")
	s.Require().NoError(err)
	s.Equal([]byte("hello"), res.Data)
	s.Equal(int64(5), res.Size)
	s.Equal("etag", res.ETag)
}

func (s *RepositoryTestSuite) TestDownload_NotFound() {
	ctx := context.Background()
	s.api.On("StatObject", ctx, "data", "missing.xlsx", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := s.repo.Download(ctx, "data", "missing.xlsx")
	s.True(errors.IsNotFound(err))
	s.api.AssertNotCalled(s.T(), "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RepositoryTestSuite) TestDownload_Unavailable() {
	ctx := context.Background()
	s.api.On("StatObject", ctx, "data", "a.csv", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "AccessDenied"})

	_, err := s.repo.Download(ctx, "data", "a.csv")
	s.True(errors.IsCode(err, errors.ErrCodeDatasetUnavailable))
}

func (s *RepositoryTestSuite) TestDownload_TooLarge() {
	ctx := context.Background()
	s.api.On("StatObject", ctx, "data", "big.csv", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{Size: maxObjectSize + 1}, nil)

	_, err := s.repo.Download(ctx, "data", "big.csv")
	s.True(errors.IsCode(err, errors.ErrCodeDatasetInvalid))
}

func (s *RepositoryTestSuite) TestDownload_Validation() {
	_, err := s.repo.Download(context.Background(), "", "x")
	s.True(errors.IsValidation(err))
}

func (s *RepositoryTestSuite) TestUpload() {
	ctx := context.Background()
	s.api.On("BucketExists", ctx, "exports").Return(true, nil)
	s.api.On("PutObject", ctx, "exports", "SP-2019.html", mock.Anything, int64(4),
		minio.PutObjectOptions{ContentType: "text/html"}).
		Return(minio.UploadInfo{ETag: "e1", Size: 4}, nil)

	res, err := s.repo.Upload(ctx, &UploadRequest{
		Bucket: "exports", ObjectKey: "SP-2019.html", Data: []byte("<h1>"), ContentType: "text/html",
	})
	s.Require().NoError(err)
	s.Equal("e1", res.ETag)
	s.Equal(int64(4), res.Size)
}

func (s *RepositoryTestSuite) TestUpload_Failure() {
	ctx := context.Background()
	s.api.On("BucketExists", ctx, "exports").Return(true, nil)
	s.api.On("PutObject", ctx, "exports", "k", mock.Anything, int64(1), mock.Anything).
		Return(minio.UploadInfo{}, minio.ErrorResponse{Code: "InternalError"})

	_, err := s.repo.Upload(ctx, &UploadRequest{Bucket: "exports", ObjectKey: "k", Data: []byte("x")})
	s.True(errors.IsCode(err, errors.ErrCodeExternalService))
}

func (s *RepositoryTestSuite) TestExists() {
	ctx := context.Background()
	s.api.On("StatObject", ctx, "data", "a", minio.StatObjectOptions{}).Return(minio.ObjectInfo{}, nil)
	s.api.On("StatObject", ctx, "data", "b", minio.StatObjectOptions{}).Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	ok, err := s.repo.Exists(ctx, "data", "a")
	s.NoError(err)
	s.True(ok)
	ok, err = s.repo.Exists(ctx, "data", "b")
	s.NoError(err)
	s.False(ok)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

//Personal.AI order the ending
