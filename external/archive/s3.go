package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/platform/awsclient"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
)

const hashMetadataKey = "payload-sha256"

// PutObjectAPI is the slice of the S3 client the archive needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket string
	Prefix string
}

// S3Archive stores each raw provider response as one JSON object under
// <prefix>/<platform>/<league>/<season>/<view>.json.
type S3Archive struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *logging.Logger
}

func NewS3Archive(client PutObjectAPI, cfg Config, logger *logging.Logger) *S3Archive {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Archive{
		client: client,
		bucket: strings.TrimSpace(cfg.Bucket),
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		logger: logger,
	}
}

type ClientOptions struct {
	awsclient.Options
	Endpoint string
}

// NewClient builds an S3 client. A custom endpoint switches to path-style
// addressing, which S3 compatible stores expect.
func NewClient(ctx context.Context, opts ClientOptions) (*s3.Client, error) {
	cfg, err := awsclient.Load(ctx, opts.Options)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := awsclient.Endpoint(opts.Endpoint); endpoint != nil {
			o.BaseEndpoint = endpoint
			o.UsePathStyle = true
		}
	}), nil
}

func (a *S3Archive) ObjectKey(item rawdata.Payload) string {
	view := strings.NewReplacer(",", "+", "/", "_").Replace(item.View)
	key := path.Join(strings.ToLower(item.Platform), item.LeagueID, strconv.Itoa(item.Season), view+".json")
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

func (a *S3Archive) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	for _, item := range items {
		hash := item.PayloadHash
		if hash == "" {
			sum := sha256.Sum256(item.PayloadJSON)
			hash = hex.EncodeToString(sum[:])
		}

		key := a.ObjectKey(item)
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(item.PayloadJSON),
			ContentType: aws.String("application/json"),
			Metadata:    map[string]string{hashMetadataKey: hash},
		})
		if err != nil {
			return crerr.Wrapf(err, "archive raw payload bucket=%s key=%s", a.bucket, key)
		}
		a.logger.DebugContext(ctx, "archived raw payload", "key", key, "bytes", len(item.PayloadJSON))
	}
	return nil
}

// Nop discards payloads. Used when archiving is disabled.
type Nop struct{}

func (Nop) UpsertMany(context.Context, []rawdata.Payload) error { return nil }
