package filestore

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/trezcool/studman/core"
)

// objectAPI is the subset of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
}

var _ core.FileStore = (*s3Store)(nil)

// NewS3Store loads the AWS credentials from the environment. A custom endpoint (MinIO, R2, ...)
// switches to path-style addressing.
func NewS3Store(ctx context.Context, conf core.StorageConfig) (*s3Store, error) {
	if conf.S3Bucket == "" {
		return nil, errors.New("storage: S3 bucket is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.S3Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := conf.PublicURL
	if publicURL == "" || strings.HasPrefix(publicURL, "/") {
		publicURL = "https://" + conf.S3Bucket + ".s3." + conf.S3Region + ".amazonaws.com"
		if conf.S3Endpoint != "" {
			publicURL = strings.TrimSuffix(conf.S3Endpoint, "/") + "/" + conf.S3Bucket
		}
	}
	return &s3Store{client: client, bucket: conf.S3Bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *s3Store) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", errors.Wrap(err, "uploading object")
	}
	return s.publicURL + "/" + key, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	})
	return errors.Wrap(err, "deleting object")
}
