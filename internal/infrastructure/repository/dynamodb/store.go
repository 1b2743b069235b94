package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/riskibarqy/fantasy-history/internal/platform/awsclient"
)

// API is the subset of the DynamoDB client the store calls.
type API interface {
	BatchWriteItem(ctx context.Context, params *awsdynamodb.BatchWriteItemInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.BatchWriteItemOutput, error)
	awsdynamodb.QueryAPIClient
}

// Store maps kv items onto a single table with string keys PK and SK.
type Store struct {
	client API
	table  string
}

func NewStore(client API, table string) *Store {
	return &Store{client: client, table: table}
}

type ClientOptions struct {
	awsclient.Options
	Endpoint string
}

func NewClient(ctx context.Context, opts ClientOptions) (*awsdynamodb.Client, error) {
	cfg, err := awsclient.Load(ctx, opts.Options)
	if err != nil {
		return nil, err
	}
	return awsdynamodb.NewFromConfig(cfg, func(o *awsdynamodb.Options) {
		if endpoint := awsclient.Endpoint(opts.Endpoint); endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	}), nil
}

type record struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	Category  string    `dynamodbav:"category"`
	Payload   string    `dynamodbav:"payload"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func toRecord(item kv.Item) record {
	return record{
		PK:        item.PartitionKey,
		SK:        item.SortKey,
		Category:  item.Category,
		Payload:   string(item.Payload),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
}

func (r record) item() kv.Item {
	return kv.Item{
		PartitionKey: r.PK,
		SortKey:      r.SK,
		Category:     r.Category,
		Payload:      []byte(r.Payload),
		UpdatedAt:    r.UpdatedAt,
	}
}

func (s *Store) BatchPut(ctx context.Context, items []kv.Item) ([]kv.Item, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if len(items) > kv.MaxBatchSize {
		return nil, crerr.Newf("batch of %d items exceeds limit %d", len(items), kv.MaxBatchSize)
	}

	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		av, err := attributevalue.MarshalMap(toRecord(item))
		if err != nil {
			return nil, crerr.Wrapf(err, "marshal item %s", item.SortKey)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	out, err := s.client.BatchWriteItem(ctx, &awsdynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.table: requests},
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "batch write %d items to %s", len(items), s.table)
	}

	leftover := out.UnprocessedItems[s.table]
	if len(leftover) == 0 {
		return nil, nil
	}
	unprocessed := make([]kv.Item, 0, len(leftover))
	for _, req := range leftover {
		if req.PutRequest == nil {
			continue
		}
		var rec record
		if err := attributevalue.UnmarshalMap(req.PutRequest.Item, &rec); err != nil {
			return nil, crerr.Wrap(err, "decode unprocessed item")
		}
		unprocessed = append(unprocessed, rec.item())
	}
	return unprocessed, nil
}

func (s *Store) Query(ctx context.Context, partition, prefix string) ([]kv.Item, error) {
	input := &awsdynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partition},
		},
		ConsistentRead: aws.Bool(true),
	}
	if prefix != "" {
		input.KeyConditionExpression = aws.String("PK = :pk AND begins_with(SK, :prefix)")
		input.ExpressionAttributeValues[":prefix"] = &types.AttributeValueMemberS{Value: prefix}
	}

	var out []kv.Item
	paginator := awsdynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, crerr.Wrapf(err, "query %s pk=%s prefix=%s", s.table, partition, prefix)
		}
		var records []record
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, crerr.Wrap(err, "decode query page")
		}
		for _, rec := range records {
			out = append(out, rec.item())
		}
	}
	return out, nil
}

func (s *Store) String() string {
	return fmt.Sprintf("dynamodb(%s)", s.table)
}
