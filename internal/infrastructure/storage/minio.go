// Package storage implements the image-hosting client on top of MinIO/S3
// compatible object storage. The object key doubles as the public identifier
// recorded on reviews.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/revuo/reviews-api/internal/core/ports"
)

// imageFolder is the fixed prefix every uploaded review image lives under.
const imageFolder = "reviews"

// Config captures the settings for the S3-compatible image host.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ImageHost implements ports.ImageStore.
type ImageHost struct {
	client *minio.Client
	bucket string
}

// NewImageHost connects to the object store and ensures the bucket exists.
func NewImageHost(cfg Config) (*ImageHost, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init image host client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &ImageHost{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores the image under a fresh key and returns the key as the
// image's public identifier.
func (h *ImageHost) Upload(ctx context.Context, in ports.ImageUpload) (string, error) {
	publicID := imageFolder + "/" + uuid.NewString() + path.Ext(in.Filename)

	_, err := h.client.PutObject(
		ctx,
		h.bucket,
		publicID,
		bytes.NewReader(in.Data),
		int64(len(in.Data)),
		minio.PutObjectOptions{ContentType: in.ContentType},
	)
	if err != nil {
		return "", fmt.Errorf("put image: %w", err)
	}
	return publicID, nil
}

// Remove deletes the hosted image by public identifier.
func (h *ImageHost) Remove(ctx context.Context, publicID string) error {
	if err := h.client.RemoveObject(ctx, h.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
