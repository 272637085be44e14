package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"taic-market/internal/config"
)

// ObjectStore abstrae el almacenamiento de objetos para uploads.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignPut(ctx context.Context, key string, expires time.Duration) (string, error)
}

// S3Store implementa ObjectStore contra S3 o un endpoint compatible (MinIO).
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

// ObjectKey genera una clave particionada por fecha para un prefijo dado.
func ObjectKey(prefix string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", prefix, d.Year(), d.Month(), d.Day(), uuid.NewString())
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (s *S3Store) PresignPut(ctx context.Context, key string, expires time.Duration) (string, error) {
	presign := s3.NewPresignClient(s.client)

	req, err := presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	return req.URL, nil
}
