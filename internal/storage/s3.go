package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	appconfig "solar-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectStore is the interface services upload through. Satisfied by
// S3Store; tests substitute a fake.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, body []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// S3Store talks to an S3-compatible bucket (Cloudflare R2 in
// production deployments).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(cfg *appconfig.Config) (*S3Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.Storage.Bucket,
		publicURL: strings.TrimSuffix(cfg.Storage.PublicURL, "/"),
	}, nil
}

// Upload writes the object and returns its durable public URL.
func (s *S3Store) Upload(ctx context.Context, key string, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage upload failed: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

// Delete removes the object by its stored key. Callers keep the key
// next to the URL at upload time, so no URL parsing happens here.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("[Storage] Delete failed for %s: %v", key, err)
	}
	return err
}

// BuildKey creates a collision-free object key under a folder,
// keeping the original extension for content-type sniffing on the CDN.
func BuildKey(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return folder + "/" + uuid.NewString() + ext
}
