// internal/adapters/backend/s3.go
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	awshttp "github.com/aws/smithy-go/transport/http"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
)

// S3Config configures an object-store backend. Endpoint is optional
// and points at an S3-compatible server (MinIO, LocalStack).
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// S3API is the slice of the S3 client the backend uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 keeps the collection as a single object. The object's ETag is the
// version token: writes are conditional on it, so a write over a
// revision someone else replaced fails with a precondition error.
type S3 struct {
	cfg    S3Config
	client S3API
	logger *slog.Logger
}

var _ ports.WritableBackend = (*S3)(nil)

// NewS3 creates an object-store backend with the given client.
func NewS3(cfg S3Config, client S3API, logger *slog.Logger) *S3 {
	return &S3{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("backend", "s3")),
	}
}

// NewS3Client builds an S3 client from the backend config.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Name implements ports.Backend.
func (s *S3) Name() string { return "s3" }

// Versioned implements ports.WritableBackend.
func (s *S3) Versioned() bool { return true }

// Load implements ports.Backend.
func (s *S3) Load(ctx context.Context) (*ports.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.cfg.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			s.logger.Debug("object absent, starting empty")
			return &ports.Snapshot{}, nil
		}
		return nil, s.classify("s3 load", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, wrapTransportErr("s3 load", err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	return &ports.Snapshot{
		Records: records,
		Token:   etagToken(out.ETag),
	}, nil
}

// Store implements ports.WritableBackend.
func (s *S3) Store(ctx context.Context, records []domain.PlainRecord, token string) (string, error) {
	body, err := encodeRecords(records)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(s.cfg.Key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}
	if token != "" {
		input.IfMatch = aws.String(token)
	} else {
		// First write must not clobber an object created concurrently.
		input.IfNoneMatch = aws.String("*")
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return "", s.classify("s3 store", err)
	}

	newToken := etagToken(out.ETag)
	s.logger.Debug("object replaced",
		slog.Int("records", len(records)),
		slog.String("etag", newToken))
	return newToken, nil
}

// classify maps SDK failures onto the shared error kinds.
func (s *S3) classify(op string, err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusPreconditionFailed, http.StatusConflict:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case http.StatusRequestTimeout:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrTimeout, err)
		default:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrBackendRejected, err)
		}
	}
	return wrapTransportErr(op, err)
}

func etagToken(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, `"`)
}
