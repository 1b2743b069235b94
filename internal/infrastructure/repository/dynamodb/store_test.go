package dynamodb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	batchInputs []*awsdynamodb.BatchWriteItemInput
	rejectSK    string
	batchErr    error

	queryInputs []*awsdynamodb.QueryInput
	pages       [][]record
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *awsdynamodb.BatchWriteItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.BatchWriteItemOutput, error) {
	f.batchInputs = append(f.batchInputs, in)
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	out := &awsdynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, reqs := range in.RequestItems {
		for _, req := range reqs {
			sk := req.PutRequest.Item["SK"].(*types.AttributeValueMemberS).Value
			if sk == f.rejectSK {
				out.UnprocessedItems[table] = append(out.UnprocessedItems[table], req)
			}
		}
	}
	return out, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *awsdynamodb.QueryInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, in)
	page := len(f.queryInputs) - 1
	if page >= len(f.pages) {
		return &awsdynamodb.QueryOutput{}, nil
	}

	items, err := attributevalue.MarshalList(f.pages[page])
	if err != nil {
		return nil, err
	}
	out := &awsdynamodb.QueryOutput{}
	for _, item := range items {
		out.Items = append(out.Items, item.(*types.AttributeValueMemberM).Value)
	}
	if page < len(f.pages)-1 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "p"},
			"SK": &types.AttributeValueMemberS{Value: f.pages[page][len(f.pages[page])-1].SK},
		}
	}
	return out, nil
}

func TestStoreBatchPutReturnsUnprocessed(t *testing.T) {
	fake := &fakeDynamo{rejectSK: "MEMBER#b"}
	store := NewStore(fake, "league-history")
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	unprocessed, err := store.BatchPut(context.Background(), []kv.Item{
		{PartitionKey: "p", SortKey: "MEMBER#a", Category: "MEMBER", Payload: []byte(`{"owner_id":"a"}`), UpdatedAt: at},
		{PartitionKey: "p", SortKey: "MEMBER#b", Category: "MEMBER", Payload: []byte(`{"owner_id":"b"}`), UpdatedAt: at},
	})
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, "MEMBER#b", unprocessed[0].SortKey)
	assert.Equal(t, `{"owner_id":"b"}`, string(unprocessed[0].Payload))
	assert.True(t, unprocessed[0].UpdatedAt.Equal(at))

	require.Len(t, fake.batchInputs, 1)
	reqs := fake.batchInputs[0].RequestItems["league-history"]
	require.Len(t, reqs, 2)
	assert.Equal(t, "p", reqs[0].PutRequest.Item["PK"].(*types.AttributeValueMemberS).Value)
}

func TestStoreBatchPutErrors(t *testing.T) {
	store := NewStore(&fakeDynamo{batchErr: errors.New("throttled")}, "t")
	_, err := store.BatchPut(context.Background(), []kv.Item{{PartitionKey: "p", SortKey: "s"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")

	oversized := make([]kv.Item, kv.MaxBatchSize+1)
	_, err = store.BatchPut(context.Background(), oversized)
	require.Error(t, err)
}

func TestStoreQueryFollowsPagesWithPrefix(t *testing.T) {
	fake := &fakeDynamo{pages: [][]record{
		{{PK: "p", SK: "MATCHUP#2020#01#1#2", Payload: `{}`}},
		{{PK: "p", SK: "MATCHUP#2020#01#3#4", Payload: `{}`}},
	}}
	store := NewStore(fake, "league-history")

	items, err := store.Query(context.Background(), "p", "MATCHUP#2020#")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "MATCHUP#2020#01#3#4", items[1].SortKey)

	require.Len(t, fake.queryInputs, 2)
	first := fake.queryInputs[0]
	assert.True(t, strings.Contains(*first.KeyConditionExpression, "begins_with(SK, :prefix)"))
	assert.Equal(t, "MATCHUP#2020#", first.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS).Value)
	assert.NotNil(t, fake.queryInputs[1].ExclusiveStartKey)
}

func TestStoreQueryWithoutPrefix(t *testing.T) {
	fake := &fakeDynamo{}
	store := NewStore(fake, "t")

	items, err := store.Query(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "PK = :pk", *fake.queryInputs[0].KeyConditionExpression)
}
