package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Client struct {
	s3       s3iface.S3API
	bucket   string
	prefix   string
	pipeline Pipeline
}

func NewS3Client(region, bucket, prefix string, pipeline Pipeline) (*S3Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return NewS3ClientWithAPI(s3.New(sess), bucket, prefix, pipeline), nil
}

func NewS3ClientWithAPI(api s3iface.S3API, bucket, prefix string, pipeline Pipeline) *S3Client {
	return &S3Client{s3: api, bucket: bucket, prefix: prefix, pipeline: pipeline}
}

func (c *S3Client) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	body, err := c.pipeline.process(file)
	if err != nil {
		return "", err
	}

	key := objectName(c.prefix, pipelineExt)
	_, err = c.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(pipelineContentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key), nil
}
