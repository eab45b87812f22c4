// Package archive uploads exported reports to S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const csvContentType = "text/csv"

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

func New(client ObjectPutter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// NewFromConfig builds an S3 client from static credentials. A custom endpoint
// switches to path-style addressing, which R2 and MinIO require.
func NewFromConfig(ctx context.Context, cfg config.ArchiveConfig) (*Archiver, error) {
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
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// Key returns the object key for filename, stamped with the upload time so
// repeated exports never overwrite each other.
func (a *Archiver) Key(filename string) string {
	base := path.Base(filename)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := a.now().UTC().Format("20060102T150405Z")
	return path.Join(a.prefix, fmt.Sprintf("%s-%s%s", stem, stamp, ext))
}

// UploadCSV stores data under a timestamped key and returns that key.
func (a *Archiver) UploadCSV(ctx context.Context, filename string, data []byte) (string, error) {
	log := logger.GetLogger()
	key := a.Key(filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(a.bucket),
		Key:               aws.String(key),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String(csvContentType),
		ChecksumAlgorithm: s3types.ChecksumAlgorithmCrc32,
	})
	if err != nil {
		log.Errorw("Failed to archive report", "bucket", a.bucket, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Infow("Archived report", "bucket", a.bucket, "key", key, "bytes", len(data))
	return key, nil
}
