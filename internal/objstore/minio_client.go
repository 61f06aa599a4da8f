package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient implements ObjectStore on top of github.com/minio/minio-go/v7.
type MinIOClient struct {
	client *minio.Client
	config Config
}

// NewMinIOClient creates a client from an explicit config.
func NewMinIOClient(cfg Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOClient{
		client: client,
		config: cfg,
	}, nil
}

// NewMinIOClientFromEnv creates a client from MINIO_* environment variables.
func NewMinIOClientFromEnv() (*MinIOClient, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	return NewMinIOClient(Config{
		Endpoint:        endpoint,
		AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:          os.Getenv("MINIO_USE_SSL") == "true",
	})
}

// ensureBucket creates the bucket if it does not exist yet.
func (c *MinIOClient) ensureBucket(bucket string) error {
	exists, err := c.client.BucketExists(context.Background(), bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{
			Region: c.config.Region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// PutObject uploads an object.
func (c *MinIOClient) PutObject(bucket, object string, data io.Reader, size int64) error {
	if err := c.ensureBucket(bucket); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	_, err := c.client.PutObject(context.Background(), bucket, object, data, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object failed: %w", err)
	}
	return nil
}

// GetObject downloads an object.
func (c *MinIOClient) GetObject(bucket, object string) ([]byte, error) {
	reader, err := c.client.GetObject(context.Background(), bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object failed: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return data, nil
}

// ListObjects returns objects under a prefix, newest first.
func (c *MinIOClient) ListObjects(bucket, prefix string) ([]ObjectInfo, error) {
	if err := c.ensureBucket(bucket); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	objectCh := c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var objects []ObjectInfo
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects failed: %w", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			LastModified: object.LastModified,
			Size:         object.Size,
		})
	}

	for i, j := 0, len(objects)-1; i < j; i, j = i+1, j-1 {
		objects[i], objects[j] = objects[j], objects[i]
	}

	return objects, nil
}
