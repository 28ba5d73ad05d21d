package upload

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"snapcap/tools/errs"
)

// S3Config mirrors the environment-driven settings for the media bucket.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string // non-AWS providers (MinIO etc.)
	AccessKey string
	SecretKey string
	PublicURL string // CDN base; defaults to the bucket endpoint
}

// S3Store streams uploads to the bucket with the multipart upload manager.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body multipart.File, size int64) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", errs.Wrap(err)
	}
	return s.publicURL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	return errs.Wrap(err)
}

func (s *S3Store) publicURL(key string) string {
	base := s.cfg.PublicURL
	if base == "" {
		base = "https://" + s.cfg.Bucket + ".s3." + s.cfg.Region + ".amazonaws.com"
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
