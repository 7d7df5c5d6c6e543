package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Uploader ships rendered reports to S3
type Uploader struct {
	log zerolog.Logger
}

// NewUploader creates a report uploader
func NewUploader(log zerolog.Logger) *Uploader {
	return &Uploader{
		log: log.With().Str("component", "report-upload").Logger(),
	}
}

// ParseS3URL splits an s3://bucket/key target. ok is false for any other
// scheme.
func ParseS3URL(target string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(target, "s3://") {
		return "", "", false
	}

	rest := strings.TrimPrefix(target, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}

// Upload writes the report body to the bucket/key using the ambient AWS
// credential chain.
func (u *Uploader) Upload(ctx context.Context, bucket, key string, body []byte) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	uploader := manager.NewUploader(client)

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(body),
		ContentType: awssdk.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to s3://%s/%s: %w", bucket, key, err)
	}

	u.log.Info().Str("bucket", bucket).Str("key", key).Int("bytes", len(body)).Msg("Report uploaded")

	return nil
}
