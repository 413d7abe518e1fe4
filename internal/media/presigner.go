package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"swimschool/internal/config"
)

// Upload is a presigned PUT for one progress media object
type Upload struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Presigner issues upload URLs for progress photos and videos
type Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
}

// NewPresigner builds a presigner from config. It returns nil, nil when no bucket is configured.
func NewPresigner(ctx context.Context, cfg *config.Config) (*Presigner, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	expiry := cfg.S3URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &Presigner{client: s3.NewPresignClient(client), bucket: cfg.S3Bucket, expiry: expiry}, nil
}

// ObjectKey names a new object for a student's media
func ObjectKey(tenantID, studentID int64, mediaType, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("tenants/%d/students/%d/%s/%s%s", tenantID, studentID, mediaType, uuid.New().String(), ext)
}

// PresignUpload returns a PUT URL for key, valid for the configured expiry
func (p *Presigner) PresignUpload(ctx context.Context, key, contentType string) (*Upload, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	request, err := p.client.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = p.expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &Upload{Key: key, URL: request.URL, ExpiresAt: time.Now().Add(p.expiry)}, nil
}
