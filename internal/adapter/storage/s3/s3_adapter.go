package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// MaxUploadSize is the per-file upload limit in bytes (5MB).
const MaxUploadSize = 5_000_000

var allowedFormats = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// ValidateUpload enforces the format and size constraints. It runs before
// any bytes reach the provider.
func ValidateUpload(contentType string, size int) error {
	if !allowedFormats[contentType] {
		return domain.ErrUnsupportedFormat
	}
	if size > MaxUploadSize {
		return domain.ErrFileTooLarge
	}
	return nil
}

// ImageStorage implements domain.Storage on top of a MinIO bucket.
type ImageStorage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewImageStorage creates the MinIO client and ensures the bucket exists.
func NewImageStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*ImageStorage, error) {
	log.Info("Initializing MinIO image storage", zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("ImageStorage: failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	err = client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), bucketName)
		if errBucketExists == nil && exists {
			log.Info("ImageStorage: bucket already exists", zap.String("bucket", bucketName))
		} else {
			log.Error("ImageStorage: failed to make or verify bucket", zap.String("bucket", bucketName), zap.Error(err))
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucketName, err, errBucketExists)
		}
	}

	return &ImageStorage{
		client: client,
		bucket: bucketName,
		logger: log.Named("ImageStorage"),
	}, nil
}

// Upload validates the file, stores it under a unique object key and returns
// the resulting image descriptor.
func (s *ImageStorage) Upload(ctx context.Context, originalFilename, contentType string, data []byte) (domain.Image, error) {
	if err := ValidateUpload(contentType, len(data)); err != nil {
		s.logger.Warn("ImageStorage.Upload: rejected file",
			zap.String("original_filename", originalFilename),
			zap.String("content_type", contentType),
			zap.Int("size_bytes", len(data)),
			zap.Error(err))
		return domain.Image{}, err
	}

	ext := filepath.Ext(originalFilename)
	objectKey := fmt.Sprintf("images/%s%s", uuid.New().String(), ext)

	s.logger.Info("ImageStorage.Upload: uploading file",
		zap.String("bucket", s.bucket),
		zap.String("object_key", objectKey),
		zap.String("original_filename", originalFilename),
		zap.Int("size_bytes", len(data)))

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("ImageStorage.Upload: PutObject failed", zap.String("key", objectKey), zap.Error(err))
		return domain.Image{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	fileURL := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	return domain.Image{URL: fileURL, Filename: objectKey}, nil
}

// Delete removes the object. Deleting an absent object is not an error.
func (s *ImageStorage) Delete(ctx context.Context, filename string) error {
	s.logger.Info("ImageStorage.Delete: removing object", zap.String("bucket", s.bucket), zap.String("object_key", filename))

	err := s.client.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{})
	if err != nil {
		s.logger.Error("ImageStorage.Delete: RemoveObject failed", zap.String("object_key", filename), zap.Error(err))
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", filename, s.bucket, err)
	}
	return nil
}
