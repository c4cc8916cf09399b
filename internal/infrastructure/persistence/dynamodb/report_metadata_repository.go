package dynamodb

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	attrPK          = "PK"
	attrSK          = "SK"
	attrDashboardID = "dashboard_id"
	attrReportID    = "report_id"
	attrS3Key       = "s3_key"
	attrContentType = "content_type"
	attrSizeBytes   = "size_bytes"
	attrSites       = "sites"
	attrRangeStart  = "range_start"
	attrRangeEnd    = "range_end"
	attrCreatedAt   = "created_at"
	attrExpiresAt   = "expires_at"
)

var dashboardIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

type Config struct {
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
}

// tableAPI is the part of the DynamoDB client the repository uses.
type tableAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ReportMetadataRepository indexes reports in one table:
// PK = DASHBOARD#<id>, SK = <created ms, zero padded>#<key hash>.
type ReportMetadataRepository struct {
	client      tableAPI
	tableName   string
	strongReads bool
}

type cursorPayload struct {
	DashboardID string                 `json:"dashboard_id"`
	Key         map[string]cursorValue `json:"key"`
}

type cursorValue struct {
	S string `json:"s,omitempty"`
	N string `json:"n,omitempty"`
}

func NewReportMetadataRepository(ctx context.Context, cfg Config) (*ReportMetadataRepository, error) {
	if strings.TrimSpace(cfg.TableName) == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("both dynamodb access key id and secret access key are required for static credentials")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config for dynamodb: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(options *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			options.BaseEndpoint = &endpoint
		}
	})

	return newRepository(client, cfg.TableName, cfg.StrongReads), nil
}

func newRepository(client tableAPI, tableName string, strongReads bool) *ReportMetadataRepository {
	return &ReportMetadataRepository{
		client:      client,
		tableName:   strings.TrimSpace(tableName),
		strongReads: strongReads,
	}
}

func (r *ReportMetadataRepository) Put(ctx context.Context, record port.ReportMetadata) error {
	item, err := toItem(record)
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put failed: %w", err)
	}
	return nil
}

func (r *ReportMetadataRepository) ListByDashboard(ctx context.Context, query port.ReportListQuery) (port.ReportListPage, error) {
	dashboardID := strings.TrimSpace(query.DashboardID)
	if !dashboardIDPattern.MatchString(dashboardID) {
		return port.ReportListPage{}, fmt.Errorf("invalid dashboard_id")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	keyCondition := "#pk = :pk"
	input := &dynamodb.QueryInput{
		TableName:                &r.tableName,
		KeyConditionExpression:   &keyCondition,
		Limit:                    int32Pointer(int32(limit)),
		ScanIndexForward:         boolPointer(false),
		ConsistentRead:           boolPointer(r.strongReads),
		ExpressionAttributeNames: map[string]string{"#pk": attrPK},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: buildPK(dashboardID)},
		},
	}

	if cursor := strings.TrimSpace(query.Cursor); cursor != "" {
		startKey, err := decodeCursor(cursor, dashboardID)
		if err != nil {
			return port.ReportListPage{}, err
		}
		input.ExclusiveStartKey = startKey
	}

	output, err := r.client.Query(ctx, input)
	if err != nil {
		return port.ReportListPage{}, fmt.Errorf("dynamodb query failed: %w", err)
	}

	items := make([]port.ReportMetadata, 0, len(output.Items))
	for _, raw := range output.Items {
		record, err := fromItem(raw)
		if err != nil {
			return port.ReportListPage{}, err
		}
		items = append(items, record)
	}

	nextCursor := ""
	if len(output.LastEvaluatedKey) > 0 {
		nextCursor, err = encodeCursor(output.LastEvaluatedKey, dashboardID)
		if err != nil {
			return port.ReportListPage{}, err
		}
	}

	return port.ReportListPage{Items: items, NextCursor: nextCursor}, nil
}

func toItem(record port.ReportMetadata) (map[string]types.AttributeValue, error) {
	dashboardID := strings.TrimSpace(record.DashboardID)
	s3Key := strings.TrimSpace(record.S3Key)
	if !dashboardIDPattern.MatchString(dashboardID) {
		return nil, fmt.Errorf("invalid dashboard_id")
	}
	if s3Key == "" {
		return nil, fmt.Errorf("s3_key is required")
	}
	if strings.TrimSpace(record.ReportID) == "" {
		return nil, fmt.Errorf("report_id is required")
	}

	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	createdAtMS := createdAt.UnixMilli()

	sites := make([]types.AttributeValue, 0, len(record.Sites))
	for _, site := range record.Sites {
		sites = append(sites, &types.AttributeValueMemberS{Value: site})
	}

	item := map[string]types.AttributeValue{
		attrPK:          &types.AttributeValueMemberS{Value: buildPK(dashboardID)},
		attrSK:          &types.AttributeValueMemberS{Value: buildSK(createdAtMS, s3Key)},
		attrDashboardID: &types.AttributeValueMemberS{Value: dashboardID},
		attrReportID:    &types.AttributeValueMemberS{Value: record.ReportID},
		attrS3Key:       &types.AttributeValueMemberS{Value: s3Key},
		attrSites:       &types.AttributeValueMemberL{Value: sites},
		attrCreatedAt:   &types.AttributeValueMemberN{Value: strconv.FormatInt(createdAtMS, 10)},
	}

	if contentType := strings.TrimSpace(record.ContentType); contentType != "" {
		item[attrContentType] = &types.AttributeValueMemberS{Value: contentType}
	}
	if record.SizeBytes > 0 {
		item[attrSizeBytes] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.SizeBytes, 10)}
	}
	if !record.RangeStart.IsZero() {
		item[attrRangeStart] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.RangeStart.UnixMilli(), 10)}
	}
	if !record.RangeEnd.IsZero() {
		item[attrRangeEnd] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.RangeEnd.UnixMilli(), 10)}
	}
	if !record.ExpiresAt.IsZero() {
		// DynamoDB TTL wants epoch seconds
		item[attrExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.ExpiresAt.UTC().Unix(), 10)}
	}

	return item, nil
}

func fromItem(item map[string]types.AttributeValue) (port.ReportMetadata, error) {
	dashboardID, err := attrString(item, attrDashboardID)
	if err != nil {
		return port.ReportMetadata{}, err
	}
	reportID, err := attrString(item, attrReportID)
	if err != nil {
		return port.ReportMetadata{}, err
	}
	s3Key, err := attrString(item, attrS3Key)
	if err != nil {
		return port.ReportMetadata{}, err
	}
	createdAtMS, err := attrInt64(item, attrCreatedAt)
	if err != nil {
		return port.ReportMetadata{}, err
	}

	record := port.ReportMetadata{
		DashboardID: dashboardID,
		ReportID:    reportID,
		S3Key:       s3Key,
		ContentType: optionalString(item, attrContentType),
		SizeBytes:   optionalInt64(item, attrSizeBytes),
		Sites:       optionalStringList(item, attrSites),
		CreatedAt:   time.UnixMilli(createdAtMS).UTC(),
	}
	if ms := optionalInt64(item, attrRangeStart); ms > 0 {
		record.RangeStart = time.UnixMilli(ms).UTC()
	}
	if ms := optionalInt64(item, attrRangeEnd); ms > 0 {
		record.RangeEnd = time.UnixMilli(ms).UTC()
	}
	if seconds := optionalInt64(item, attrExpiresAt); seconds > 0 {
		record.ExpiresAt = time.Unix(seconds, 0).UTC()
	}

	return record, nil
}

func buildPK(dashboardID string) string {
	return "DASHBOARD#" + dashboardID
}

// buildSK pads the timestamp so lexical order is chronological.
func buildSK(createdAtMS int64, s3Key string) string {
	return fmt.Sprintf("%013d#%s", createdAtMS, objectHash(s3Key))
}

func objectHash(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func encodeCursor(key map[string]types.AttributeValue, dashboardID string) (string, error) {
	values := make(map[string]cursorValue, len(key))
	for attributeName, raw := range key {
		switch value := raw.(type) {
		case *types.AttributeValueMemberS:
			values[attributeName] = cursorValue{S: value.Value}
		case *types.AttributeValueMemberN:
			values[attributeName] = cursorValue{N: value.Value}
		default:
			return "", fmt.Errorf("unsupported cursor attribute type for %s", attributeName)
		}
	}

	serialized, err := json.Marshal(cursorPayload{DashboardID: dashboardID, Key: values})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(serialized), nil
}

func decodeCursor(cursor, dashboardID string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, port.ErrInvalidCursor
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, port.ErrInvalidCursor
	}
	if payload.DashboardID != dashboardID {
		return nil, fmt.Errorf("%w: does not match dashboard", port.ErrInvalidCursor)
	}

	key := make(map[string]types.AttributeValue, len(payload.Key))
	for attributeName, value := range payload.Key {
		switch {
		case value.S != "":
			key[attributeName] = &types.AttributeValueMemberS{Value: value.S}
		case value.N != "":
			key[attributeName] = &types.AttributeValueMemberN{Value: value.N}
		default:
			return nil, port.ErrInvalidCursor
		}
	}
	return key, nil
}

func attrString(item map[string]types.AttributeValue, name string) (string, error) {
	raw, ok := item[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok || strings.TrimSpace(value.Value) == "" {
		return "", fmt.Errorf("invalid attribute %s", name)
	}
	return value.Value, nil
}

func optionalString(item map[string]types.AttributeValue, name string) string {
	value, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return value.Value
}

func optionalStringList(item map[string]types.AttributeValue, name string) []string {
	list, ok := item[name].(*types.AttributeValueMemberL)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list.Value))
	for _, raw := range list.Value {
		if s, ok := raw.(*types.AttributeValueMemberS); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

func attrInt64(item map[string]types.AttributeValue, name string) (int64, error) {
	raw, ok := item[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid attribute %s", name)
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s: %w", name, err)
	}
	return parsed, nil
}

func optionalInt64(item map[string]types.AttributeValue, name string) int64 {
	value, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func boolPointer(v bool) *bool {
	return &v
}

func int32Pointer(v int32) *int32 {
	return &v
}
