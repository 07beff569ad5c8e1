package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	appconfig "github.com/allode/property-backend/pkg/config"
	apperrors "github.com/allode/property-backend/pkg/errors"

	"github.com/allode/property-backend/internal/domain/providers"
)

// Photos are immutable once uploaded, so CDN edges may cache for a year.
const cacheControl = "public, max-age=31536000"

// R2Adapter implements ObjectStore against a Cloudflare R2 bucket through
// the S3-compatible API.
type R2Adapter struct {
	client    *s3.Client
	bucket    string
	endpoint  string
	cdnDomain string
}

// NewR2Adapter creates a new R2 object store adapter
func NewR2Adapter(ctx context.Context, cfg *appconfig.R2Config) (providers.ObjectStore, error) {
	if !cfg.Configured() {
		return nil, apperrors.NewValidationError("R2 storage is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load R2 credentials", err)
	}

	endpoint := cfg.Endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &endpoint
	})

	return &R2Adapter{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		cdnDomain: cfg.CDNDomain,
	}, nil
}

// Put uploads the object and returns its public URL
func (a *R2Adapter) Put(ctx context.Context, key string, body []byte, contentType string) (*providers.StoredObject, error) {
	cc := cacheControl
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       &a.bucket,
		Key:          &key,
		Body:         bytes.NewReader(body),
		ContentType:  &contentType,
		CacheControl: &cc,
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to upload object to R2", err)
	}

	return &providers.StoredObject{
		Key:         key,
		URL:         a.publicURL(key),
		Size:        int64(len(body)),
		ContentType: contentType,
	}, nil
}

// Exists checks whether an object is already stored under key
func (a *R2Adapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
		return false, apperrors.NewExternalError("failed to check object existence", err)
	}
	return true, nil
}

// publicURL prefers the CDN domain; without one it falls back to the raw
// bucket endpoint, which only works for public buckets.
func (a *R2Adapter) publicURL(key string) string {
	if a.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(a.cdnDomain, "/"), key)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(a.endpoint, "/"), a.bucket, key)
}
