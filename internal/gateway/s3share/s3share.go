// Package s3share keeps shared decks as JSON objects in an S3 bucket.
package s3share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/at-ishikawa/pobcards/internal/config"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

const keyDir = "shared_safmeds"

// API is the subset of *s3.Client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store implements gateway.ShareStore.
type Store struct {
	client API
	bucket string
	prefix string
}

var _ gateway.ShareStore = (*Store)(nil)

func New(client API, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// NewFromConfig builds an S3 client from the default credential chain.
// Static keys and a custom endpoint (path-style, for MinIO or LocalStack) override it when set.
func NewFromConfig(ctx context.Context, cfg config.S3Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("awsconfig.LoadDefaultConfig() > %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// ObjectKey returns where the share stored under key lives in the bucket.
func (s *Store) ObjectKey(key string) string {
	return s.prefix + path.Join(keyDir, key+".json")
}

// WriteSharedDeck refuses to overwrite an existing object.
func (s *Store) WriteSharedDeck(ctx context.Context, key string, record gateway.ShareRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return gateway.Unavailable("s3share.WriteSharedDeck", fmt.Errorf("json.Marshal() > %w", err))
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.ObjectKey(key)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	}); err != nil {
		return gateway.Unavailable("s3share.WriteSharedDeck", fmt.Errorf("client.PutObject() > %w", err))
	}
	return nil
}

func (s *Store) ReadSharedDeck(ctx context.Context, key string) (gateway.ShareRecord, error) {
	op := fmt.Sprintf("s3share.ReadSharedDeck(%s)", key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return gateway.ShareRecord{}, gateway.NotFound(op, err)
		}
		return gateway.ShareRecord{}, gateway.Unavailable(op, fmt.Errorf("client.GetObject() > %w", err))
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return gateway.ShareRecord{}, gateway.Unavailable(op, fmt.Errorf("io.ReadAll() > %w", err))
	}
	var record gateway.ShareRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return gateway.ShareRecord{}, gateway.Unavailable(op, fmt.Errorf("json.Unmarshal() > %w", err))
	}
	return record, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
}
