// Package minio stores objects in an S3-compatible bucket through minio-go.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/storage"
)

const contentTypeSRT = "application/x-subrip"

func init() {
	storage.RegisterFactory(storage.ProviderMinio, func(ctx context.Context, cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		s, err := NewStorage(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.Info("minio bucket ready", map[string]interface{}{"endpoint": cfg.Endpoint, "bucket": cfg.Bucket})
		return s, nil
	})
}

// Storage implements storage.Storage and storage.SignedURLProvider.
type Storage struct {
	client *miniogo.Client
	bucket string
	region string
}

var (
	_ storage.Storage           = (*Storage)(nil)
	_ storage.SignedURLProvider = (*Storage)(nil)
)

// NewStorage creates a client for cfg.Endpoint. It does not contact the
// server; call EnsureBucket for that.
func NewStorage(cfg storage.Config) (*Storage, error) {
	cfg.ApplyDefaults()
	opts := &miniogo.Options{Secure: cfg.UseSSL, Region: cfg.Region}
	if cfg.AccessKey != "" {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	client, err := miniogo.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("storage: create minio client: %w", err)
	}
	return &Storage{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{Region: s.region})
	if err == nil {
		return nil
	}
	exists, existsErr := s.client.BucketExists(ctx, s.bucket)
	if existsErr == nil && exists {
		return nil
	}
	return fmt.Errorf("storage: ensure bucket %s: %w", s.bucket, err)
}

// Upload streams reader into the bucket. The object size is unknown, so
// minio-go uses a multipart upload for large bodies.
func (s *Storage) Upload(ctx context.Context, path string, reader io.Reader) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, reader, -1, miniogo.PutObjectOptions{ContentType: contentTypeSRT})
	if err != nil {
		return fmt.Errorf("storage: put object: %w", err)
	}
	return nil
}

// Download returns the object body. A missing key is reported before the
// first read by a Stat call.
func (s *Storage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: get object: %w", err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		return nil, fmt.Errorf("storage: stat object: %w", err)
	}
	return obj, nil
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, miniogo.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("storage: remove object: %w", err)
	}
	return nil
}

func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, miniogo.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat object: %w", err)
	}
	return true, nil
}

// SignedURL returns a presigned GET URL valid for expiry. The filename
// overrides the response headers so browsers save a text file.
func (s *Storage) SignedURL(ctx context.Context, path, filename string, expiry time.Duration) (string, error) {
	var params url.Values
	if filename != "" {
		params = url.Values{}
		params.Set("response-content-disposition", `attachment; filename="`+filename+`"`)
		params.Set("response-content-type", "text/plain; charset=utf-8")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, expiry, params)
	if err != nil {
		return "", fmt.Errorf("storage: presign: %w", err)
	}
	return u.String(), nil
}

func (s *Storage) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	files := []storage.FileInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, miniogo.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("storage: list objects: %w", obj.Err)
		}
		files = append(files, storage.FileInfo{
			Path:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ContentType:  obj.ContentType,
		})
	}
	return files, nil
}

func isNoSuchKey(err error) bool {
	var resp miniogo.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.StatusCode == 404
	}
	return false
}
