package awsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options selects region and, for local stacks, a static key pair. Empty
// keys fall back to the default credential chain.
type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

func (o Options) hasStaticCredentials() bool {
	return strings.TrimSpace(o.AccessKeyID) != "" && strings.TrimSpace(o.SecretAccessKey) != ""
}

func Load(ctx context.Context, opts Options) (aws.Config, error) {
	loaders := make([]func(*awsconfig.LoadOptions) error, 0, 2)
	if region := strings.TrimSpace(opts.Region); region != "" {
		loaders = append(loaders, awsconfig.WithRegion(region))
	}
	if opts.hasStaticCredentials() {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// Endpoint returns nil for a blank override so callers can assign it to a
// client's BaseEndpoint directly.
func Endpoint(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return aws.String(raw)
}
