package cloudwatch

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const (
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// buildAWSConfig loads the default chain, with static keys and an endpoint override when given.
func buildAWSConfig(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, err
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg, nil
}

// retry runs call up to maxRetries times with exponential backoff.
// A retryNow error skips the backoff for that attempt.
func retry(ctx context.Context, call func() error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		var again *retryNow
		if errors.As(err, &again) {
			continue
		}
		if attempt < maxRetries-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

type retryNow struct {
	err error
}

func (r *retryNow) Error() string { return r.err.Error() }
func (r *retryNow) Unwrap() error { return r.err }
