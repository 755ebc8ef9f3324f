// Package s3archive uploads finished archives to an S3-compatible bucket and
// hands out presigned download links.
package s3archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	UseSSL     bool
	PresignTTL time.Duration
}

type Sink struct {
	api        *minio.Client
	bucket     string
	region     string
	presignTTL time.Duration
}

func New(cfg Config) (*Sink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sink{api: client, bucket: cfg.Bucket, region: cfg.Region, presignTTL: ttl}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Sink) EnsureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Publish uploads the archive under <batchID>/organized_files.zip, removes
// the local copy and returns a presigned GET URL.
func (s *Sink) Publish(ctx context.Context, batchID string, archive *domain.ArchiveRef) (*domain.ArchiveRef, error) {
	key := ObjectKey(batchID)
	info, err := s.api.FPutObject(ctx, s.bucket, key, archive.Path, minio.PutObjectOptions{
		ContentType:        "application/zip",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", domain.ArchiveDownloadName),
	})
	if err != nil {
		return nil, fmt.Errorf("upload archive %s: %w", key, err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", domain.ArchiveDownloadName))
	signed, err := s.api.PresignedGetObject(ctx, s.bucket, key, s.presignTTL, params)
	if err != nil {
		return nil, fmt.Errorf("presign archive %s: %w", key, err)
	}

	if err := os.Remove(archive.Path); err != nil && !os.IsNotExist(err) {
		slog.Warn("archive_local_remove_failed", "path", archive.Path, "error", err)
	}

	return &domain.ArchiveRef{
		Name: domain.ArchiveDownloadName,
		Size: info.Size,
		URL:  signed.String(),
	}, nil
}

func ObjectKey(batchID string) string {
	return path.Join(batchID, domain.ArchiveDownloadName)
}
