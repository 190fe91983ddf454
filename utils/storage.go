package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// A BackupTarget receives finished database snapshots.
type BackupTarget interface {
	Store(name string, data []byte) (string, error)
}

// LocalBackupTarget writes snapshots to a directory on local disk.
type LocalBackupTarget struct {
	Dir string
}

func (lt *LocalBackupTarget) Store(name string, data []byte) (string, error) {
	if err := os.MkdirAll(lt.Dir, 0755); err != nil {
		return "", fmt.Errorf("could not create backup directory %s: %w", lt.Dir, err)
	}
	fullPath := filepath.Join(lt.Dir, name)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}

// S3BackupTarget uploads snapshots to S3-compatible object storage.
type S3BackupTarget struct {
	Client     *minio.Client
	BucketName string
	Prefix     string
}

func NewS3BackupTarget(endpoint, accessKey, secretKey, bucket, region, prefix string, useSSL bool) (*S3BackupTarget, error) {
	// Strip scheme if present
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	var creds *credentials.Credentials
	if accessKey == "" || secretKey == "" {
		// Use IAM role credentials if keys are not provided
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(accessKey, secretKey, "")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	prefix = strings.Trim(prefix, "/")

	return &S3BackupTarget{
		Client:     minioClient,
		BucketName: bucket,
		Prefix:     prefix,
	}, nil
}

func (s3 *S3BackupTarget) Store(name string, data []byte) (string, error) {
	key := name
	if s3.Prefix != "" {
		key = s3.Prefix + "/" + name
	}

	ctx := context.Background()
	reader := bytes.NewReader(data)
	_, err := s3.Client.PutObject(ctx, s3.BucketName, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/vnd.sqlite3",
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", s3.BucketName, key), nil
}
