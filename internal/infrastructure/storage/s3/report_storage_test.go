package s3

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	putKey      string
	putType     string
	putBody     []byte
	listPrefix  string
	listMaxKeys int32
	contents    []types.Object
	err         error
}

func (f *fakeObjects) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.putKey = *params.Key
	f.putType = *params.ContentType
	body, _ := io.ReadAll(params.Body)
	f.putBody = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.listPrefix = *params.Prefix
	f.listMaxKeys = *params.MaxKeys
	return &s3.ListObjectsV2Output{Contents: f.contents}, nil
}

type fakePresigner struct {
	ttl time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.ttl = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + *params.Key}, nil
}

func strPtr(v string) *string        { return &v }
func int64Ptr(v int64) *int64        { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestReportStorage_PutObjectPresigned(t *testing.T) {
	objects := &fakeObjects{}
	presigner := &fakePresigner{}
	cfg := Config{Bucket: "reports", Region: "us-east-1"}
	require.NoError(t, normalizeConfig(&cfg))
	storage := newReportStorage(objects, presigner, cfg)

	u, err := storage.PutObject(context.Background(), "reports/main/a.json", "application/json", []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "https://signed.example/reports/main/a.json", u)
	assert.Equal(t, "reports/main/a.json", objects.putKey)
	assert.Equal(t, "application/json", objects.putType)
	assert.Equal(t, []byte(`{}`), objects.putBody)
	assert.Equal(t, 15*time.Minute, presigner.ttl)

	_, err = storage.PutObject(context.Background(), " ", "application/json", nil)
	assert.Error(t, err)
}

func TestReportStorage_PublicURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantURL string
	}{
		{
			name:    "virtual hosted",
			cfg:     Config{Bucket: "reports", Region: "eu-west-1", URLMode: URLModePublic},
			wantURL: "https://reports.s3.eu-west-1.amazonaws.com/main/a%20b.json",
		},
		{
			name:    "path style",
			cfg:     Config{Bucket: "reports", Endpoint: "http://localhost:9000/", URLMode: URLModePublic, UsePathStyle: true},
			wantURL: "http://localhost:9000/reports/main/a%20b.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.NoError(t, normalizeConfig(&cfg))
			storage := newReportStorage(&fakeObjects{}, &fakePresigner{}, cfg)

			u, err := storage.GetObjectURL(context.Background(), "main/a b.json")
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, u)
		})
	}
}

func TestReportStorage_ListObjects(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	objects := &fakeObjects{contents: []types.Object{
		{Key: strPtr("reports/main/old.json"), Size: int64Ptr(10), LastModified: timePtr(older)},
		{Key: strPtr(" ")},
		{Key: strPtr("reports/main/new.json"), Size: int64Ptr(20), LastModified: timePtr(newer)},
	}}
	storage := newReportStorage(objects, &fakePresigner{}, Config{Bucket: "reports", URLMode: URLModePresigned, PresignedTTL: time.Minute})

	listed, err := storage.ListObjects(context.Background(), "reports/main/", 1000)
	require.NoError(t, err)

	assert.Equal(t, "reports/main/", objects.listPrefix)
	assert.Equal(t, int32(maxListLimit), objects.listMaxKeys)
	require.Len(t, listed, 2)
	assert.Equal(t, "reports/main/new.json", listed[0].Key)
	assert.Equal(t, int64(20), listed[0].SizeBytes)
	assert.Equal(t, "https://signed.example/reports/main/new.json", listed[0].URL)
	assert.Equal(t, "reports/main/old.json", listed[1].Key)

	_, err = storage.ListObjects(context.Background(), "", 10)
	assert.Error(t, err)
}

func TestReportStorage_ClientErrors(t *testing.T) {
	storage := newReportStorage(&fakeObjects{err: errors.New("denied")}, &fakePresigner{}, Config{Bucket: "reports", URLMode: URLModePresigned})

	_, err := storage.PutObject(context.Background(), "k", "application/json", nil)
	assert.ErrorContains(t, err, "put object failed")

	_, err = storage.ListObjects(context.Background(), "reports/", 5)
	assert.ErrorContains(t, err, "list objects failed")
}

func TestNormalizeConfig_RejectsUnknownMode(t *testing.T) {
	cfg := Config{Bucket: "b", URLMode: "ftp"}
	assert.Error(t, normalizeConfig(&cfg))
}
