package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket    string
	Region    string
	AccessID  string
	AccessKey string
	KeyPrefix string
	PublicURL string
}

type S3 struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket must not be empty")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessID, cfg.AccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		prefix:    cfg.KeyPrefix,
		publicURL: public,
	}, nil
}

func (s *S3) key(name string) string {
	return s.prefix + name
}

func (s *S3) Save(ctx context.Context, original string, r io.Reader) (string, error) {
	name, err := StoredName(original)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        r,
		ContentType: aws.String(ContentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return name, nil
}

func (s *S3) Delete(ctx context.Context, name string) error {
	if !validStoredName(name) {
		return ErrBadName
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

func (s *S3) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.publicURL + "/" + s.key(name)
}
