package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const maxDocumentBytes = 4 << 20

// S3 stores each document as one object named by its key.
type S3 struct {
	cl     S3API
	bucket string
}

func NewS3(cl S3API, bucket string) *S3 {
	return &S3{cl: cl, bucket: bucket}
}

func newS3FromConfig(ctx context.Context, cfg Config) (*S3, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cl := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3(cl, cfg.Name), nil
}

func (s *S3) GetJSON(ctx context.Context, key string) (json.RawMessage, bool, error) {
	out, err := s.cl.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		switch apiErrorCode(err) {
		case "NoSuchKey", "NotFound":
			return nil, false, nil
		}
		return nil, false, s.wrap("get", key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	if len(b) > maxDocumentBytes {
		return nil, false, fmt.Errorf("s3://%s/%s exceeds %d bytes", s.bucket, key, maxDocumentBytes)
	}
	if err := checkJSON(b); err != nil {
		return nil, false, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err)
	}
	return json.RawMessage(b), true, nil
}

func (s *S3) PutJSON(ctx context.Context, key string, doc json.RawMessage) error {
	if err := checkJSON(doc); err != nil {
		return err
	}
	_, err := s.cl.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return s.wrap("put", key, err)
	}
	return nil
}

func (s *S3) wrap(op, key string, err error) error {
	if apiErrorCode(err) == "NoSuchBucket" {
		return &ConfigError{Backend: BackendS3, Reason: fmt.Sprintf("bucket %s not found", s.bucket), Err: err}
	}
	return fmt.Errorf("%s s3://%s/%s: %w", op, s.bucket, key, err)
}
