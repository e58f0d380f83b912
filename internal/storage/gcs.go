package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSClient struct {
	client     *gcs.Client
	bucketName string
	pipeline   Pipeline
}

// NewGCSClient uses credentialsFile when set, application default
// credentials otherwise.
func NewGCSClient(ctx context.Context, bucketName, credentialsFile string, pipeline Pipeline) (*GCSClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSClient{client: client, bucketName: bucketName, pipeline: pipeline}, nil
}

// Close releases the underlying GCS client.
func (c *GCSClient) Close() error { return c.client.Close() }

func (c *GCSClient) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	body, err := c.pipeline.process(file)
	if err != nil {
		return "", err
	}

	path := objectName("products", pipelineExt)
	writer := c.client.Bucket(c.bucketName).Object(path).NewWriter(ctx)
	writer.ContentType = pipelineContentType
	if _, err := writer.Write(body); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("gcs write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", path, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, path), nil
}
