// Package storage keeps uploaded scans on local disk and, when configured,
// mirrors them to a MinIO bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client is nil when object storage is not configured
var Client *minio.Client
var BucketName string

// ErrNoObjectStorage is returned when MinIO is not configured.
var ErrNoObjectStorage = errors.New("object storage not configured")

// PresignExpiry is the lifetime of links to stored scans
const PresignExpiry = 24 * time.Hour

// Init connects to MinIO from the MINIO_* variables. Endpoint and both keys are required.
func Init(ctx context.Context, logger *slog.Logger) error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if endpoint == "" || accessKey == "" || secretKey == "" {
		logger.Info("no object storage configuration found, uploads stay local")
		return ErrNoObjectStorage
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "fra-documents"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}

	Client = client
	BucketName = bucket
	logger.Info("object storage initialized", "endpoint", endpoint, "bucket", bucket)
	return nil
}

// Available reports whether uploads are mirrored.
func Available() bool {
	return Client != nil
}

// ObjectName is the key of an uploaded scan: documents/YYYY/MM/{taskID}_{filename}
func ObjectName(now time.Time, taskID, filename string) string {
	return fmt.Sprintf("documents/%d/%02d/%s_%s", now.Year(), now.Month(), taskID, SafeFilename(filename))
}

// UploadDocument stores a scan and returns its bucket-qualified path.
func UploadDocument(ctx context.Context, taskID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", ErrNoObjectStorage
	}
	objectName := ObjectName(time.Now(), taskID, filename)

	_, err := Client.PutObject(ctx, BucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return BucketName + "/" + objectName, nil
}

// GetPresignedURL generates a presigned URL for viewing a stored scan
func GetPresignedURL(ctx context.Context, objectPath string) (string, error) {
	if Client == nil {
		return "", ErrNoObjectStorage
	}
	url, err := Client.PresignedGetObject(ctx, BucketName, trimBucket(objectPath), PresignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// DeleteDocument removes a scan from the bucket
func DeleteDocument(ctx context.Context, objectPath string) error {
	if Client == nil {
		return ErrNoObjectStorage
	}
	return Client.RemoveObject(ctx, BucketName, trimBucket(objectPath), minio.RemoveObjectOptions{})
}

// Ping checks the bucket for the health endpoint.
func Ping(ctx context.Context) error {
	if Client == nil {
		return ErrNoObjectStorage
	}
	_, err := Client.BucketExists(ctx, BucketName)
	return err
}

func trimBucket(objectPath string) string {
	return strings.TrimPrefix(objectPath, BucketName+"/")
}

// GetFileExtension extracts file extension from content type
func GetFileExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
