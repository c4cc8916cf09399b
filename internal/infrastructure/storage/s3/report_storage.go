package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
)

type URLMode string

const (
	URLModePresigned URLMode = "presigned"
	URLModePublic    URLMode = "public"

	defaultListLimit = 24
	maxListLimit     = 200
)

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	URLMode         URLMode
	PresignedTTL    time.Duration
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ReportStorage keeps exported dashboard reports in one bucket.
type ReportStorage struct {
	client       objectAPI
	presign      presignAPI
	bucket       string
	endpoint     string
	usePathStyle bool
	urlMode      URLMode
	presignedTTL time.Duration
}

func NewReportStorage(ctx context.Context, cfg Config) (*ReportStorage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}
	if err := normalizeConfig(&cfg); err != nil {
		return nil, err
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("s3 access key id and secret must be set together")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			options.BaseEndpoint = &endpoint
		}
		options.UsePathStyle = cfg.UsePathStyle
	})

	return newReportStorage(client, s3.NewPresignClient(client), cfg), nil
}

func normalizeConfig(cfg *Config) error {
	if cfg.URLMode == "" {
		cfg.URLMode = URLModePresigned
	}
	if cfg.URLMode != URLModePresigned && cfg.URLMode != URLModePublic {
		return fmt.Errorf("unsupported s3 url mode: %s", cfg.URLMode)
	}
	if cfg.URLMode == URLModePublic && strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}
	if cfg.PresignedTTL <= 0 {
		cfg.PresignedTTL = 15 * time.Minute
	}
	return nil
}

func newReportStorage(client objectAPI, presign presignAPI, cfg Config) *ReportStorage {
	return &ReportStorage{
		client:       client,
		presign:      presign,
		bucket:       strings.TrimSpace(cfg.Bucket),
		endpoint:     strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		usePathStyle: cfg.UsePathStyle,
		urlMode:      cfg.URLMode,
		presignedTTL: cfg.PresignedTTL,
	}
}

func (s *ReportStorage) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("object key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object failed: %w", err)
	}

	return s.GetObjectURL(ctx, key)
}

func (s *ReportStorage) ListObjects(ctx context.Context, prefix string, limit int) ([]port.ReportObject, error) {
	normalizedPrefix := strings.TrimSpace(prefix)
	if normalizedPrefix == "" {
		return nil, fmt.Errorf("prefix is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	maxKeys := int32(limit)
	output, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  &s.bucket,
		Prefix:  &normalizedPrefix,
		MaxKeys: &maxKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("list objects failed: %w", err)
	}

	objects := make([]port.ReportObject, 0, len(output.Contents))
	for _, object := range output.Contents {
		if object.Key == nil || strings.TrimSpace(*object.Key) == "" {
			continue
		}
		objects = append(objects, port.ReportObject{
			Key:          *object.Key,
			SizeBytes:    valueInt64(object.Size),
			LastModified: valueTime(object.LastModified),
			URL:          s.readURLOrEmpty(ctx, *object.Key),
		})
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	return objects, nil
}

func (s *ReportStorage) GetObjectURL(ctx context.Context, key string) (string, error) {
	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return "", fmt.Errorf("object key is required")
	}

	if s.urlMode == URLModePublic {
		return s.publicURL(normalizedKey), nil
	}

	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &normalizedKey,
	}, s3.WithPresignExpires(s.presignedTTL))
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}

	return request.URL, nil
}

func (s *ReportStorage) publicURL(key string) string {
	escapedKey := strings.ReplaceAll(url.PathEscape(key), "%2F", "/")
	if s.usePathStyle {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, escapedKey)
	}
	endpoint := strings.TrimPrefix(s.endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, endpoint, escapedKey)
}

func (s *ReportStorage) readURLOrEmpty(ctx context.Context, key string) string {
	u, err := s.GetObjectURL(ctx, key)
	if err != nil {
		return ""
	}
	return u
}

func valueTime(v *time.Time) time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.UTC()
}

func valueInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
