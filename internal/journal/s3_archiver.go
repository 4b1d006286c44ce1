package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"corridor_dispatch/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver stores run summaries as JSON objects at
//
//	s3://<bucket>/<prefix>/runs/YYYY/MM/DD/<recordID>.json
//
// Event and decision records are ignored.
type S3Archiver struct {
	bucket   string
	prefix   string
	uploader uploader
}

// NewS3Archiver picks up region and credentials from the usual AWS
// environment variables and shared config.
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket required")
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Archiver{
		bucket:   bucket,
		prefix:   prefix,
		uploader: manager.NewUploader(client),
	}, nil
}

// ObjectKey is the key a run summary record is stored under.
func (a *S3Archiver) ObjectKey(rec models.Record) string {
	year, month, day := rec.At.UTC().Date()
	return path.Join(a.prefix, "runs",
		fmt.Sprintf("%04d", year),
		fmt.Sprintf("%02d", int(month)),
		fmt.Sprintf("%02d", day),
		rec.ID+".json",
	)
}

func (a *S3Archiver) Write(ctx context.Context, rec models.Record) error {
	if rec.Kind != models.RecordRunSummary {
		return nil
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(a.bucket),
		Key:                  aws.String(a.ObjectKey(rec)),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", rec.ID, err)
	}
	return nil
}

func (a *S3Archiver) Close() error { return nil }
