// Package storage provides the object store gateways that receive product
// images.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Kariqs/amexan-portal/submission"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ submission.ObjectStore = (*S3Gateway)(nil)

// S3Config holds the bucket settings for product images.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	KeyPrefix    string
	ACL          string
	UsePathStyle bool
}

// objectUploader is the part of manager.Uploader the gateway needs.
type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Gateway stores images in an S3 compatible bucket and hands back the
// object location as the image's remote identity.
type S3Gateway struct {
	uploader objectUploader
	bucket   string
	prefix   string
	acl      types.ObjectCannedACL
	logger   *zap.Logger
}

// NewS3Gateway builds an S3 client from cfg. Without static keys the default
// AWS credential chain is used.
func NewS3Gateway(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Gateway, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3Gateway(manager.NewUploader(client), cfg, logger), nil
}

func newS3Gateway(u objectUploader, cfg S3Config, logger *zap.Logger) *S3Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	acl := types.ObjectCannedACL(cfg.ACL)
	return &S3Gateway{
		uploader: u,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.KeyPrefix, "/"),
		acl:      acl,
		logger:   logger,
	}
}

// Upload stores one file under a unique key.
func (g *S3Gateway) Upload(ctx context.Context, file submission.RawFile) (submission.UploadResult, error) {
	if len(file.Data) == 0 {
		return submission.UploadResult{}, errors.New("file is empty")
	}

	key := g.objectKey(file.Name)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(ContentType(file)),
	}
	if g.acl != "" {
		input.ACL = g.acl
	}

	result, err := g.uploader.Upload(ctx, input)
	if err != nil {
		g.logger.Warn("Error uploading file", zap.String("file", file.Name), zap.Error(err))
		return submission.UploadResult{}, fmt.Errorf("failed to upload %s: %w", file.Name, err)
	}

	g.logger.Debug("File uploaded", zap.String("key", key), zap.String("location", result.Location))
	return submission.UploadResult{Location: result.Location}, nil
}

func (g *S3Gateway) objectKey(name string) string {
	base := sanitizeName(name)
	key := uuid.NewString() + "-" + base
	if g.prefix == "" {
		return key
	}
	return g.prefix + "/" + key
}

// ContentType returns the declared content type of f, falling back to
// sniffing its bytes.
func ContentType(f submission.RawFile) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	return mimetype.Detect(f.Data).String()
}

func sanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
