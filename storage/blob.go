package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"quickbite-api/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Object is a stored blob: a retrievable URL and the key needed to delete it.
type Object struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadOptions carries content metadata for a stored blob.
type UploadOptions struct {
	ContentType string
	Ext         string // original filename extension, kept on the object key
}

// BlobStore stores uploaded files and hands back a URL plus a deletable key.
type BlobStore interface {
	Store(ctx context.Context, data []byte, folder string, opts UploadOptions) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// MinioStore implements BlobStore against a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	public string // base URL objects are served from
	logger *zap.Logger
}

func NewMinioStore(cfg config.StorageConfig, log *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		public: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
		logger: log.Named("storage"),
	}, nil
}

func (s *MinioStore) Store(ctx context.Context, data []byte, folder string, opts UploadOptions) (*Object, error) {
	key := path.Join(folder, uuid.New().String()+opts.Ext)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: opts.ContentType})
	if err != nil {
		s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Info("object stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return &Object{URL: s.public + "/" + key, Key: key}, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
