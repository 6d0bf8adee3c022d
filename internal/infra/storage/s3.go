package storage

import (
	"context"
	"fmt"
	"io"

	"studio-booking/internal/pkg/config"
	"studio-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const BackendS3 = "s3"

// S3Store writes uploads to an S3-compatible object store via the minio
// client. Works against AWS S3, MinIO and most compatible services.
type S3Store struct {
	client *minio.Client
	bucket string
	// Base URL for public object access, e.g. https://cdn.example.com.
	publicURL string
}

func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to create s3 client")
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.S3UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.S3Endpoint, cfg.S3Bucket)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: publicURL,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, r io.Reader, size int64, bookingID uuid.UUID, filename, mimeType string) (SavedFile, error) {
	rel := objectName(bookingID, filename)

	_, err := s.client.PutObject(ctx, s.bucket, rel, r, size, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return SavedFile{}, errs.Wrap(err, "failed to put object")
	}

	return SavedFile{
		Filename:     filename,
		RelativePath: rel,
		URL:          s.publicURL + "/" + rel,
		Backend:      BackendS3,
	}, nil
}
