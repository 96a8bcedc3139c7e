package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake client implementing DynamoDBAPI over a single-key map
type fakeDDB struct {
	items   map[string]map[string]types.AttributeValue
	err     error
	lastGet *dynamodb.GetItemInput
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGet = in
	if f.err != nil {
		return nil, f.err
	}
	k := in.Key[attrKey].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[k]}, nil
}

func (f *fakeDDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	k := in.Item[attrKey].(*types.AttributeValueMemberS).Value
	f.items[k] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamo_PutThenGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDDB()
	d := NewDynamo(fake, "bonus-ball")
	d.now = func() time.Time { return time.Unix(1755331200, 0) }

	_, ok, err := d.GetJSON(ctx, "gameData.json")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, *fake.lastGet.ConsistentRead)
	assert.Equal(t, "bonus-ball", *fake.lastGet.TableName)

	require.NoError(t, d.PutJSON(ctx, "gameData.json", json.RawMessage(`{"winner":"Bob"}`)))
	item := fake.items["gameData.json"]
	assert.Equal(t, "1755331200", item[attrUpdatedAt].(*types.AttributeValueMemberN).Value)

	got, ok, err := d.GetJSON(ctx, "gameData.json")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"winner":"Bob"}`, string(got))
}

func TestDynamo_RejectsInvalidDocument(t *testing.T) {
	fake := newFakeDDB()
	err := NewDynamo(fake, "t").PutJSON(context.Background(), "k", json.RawMessage(`{`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Empty(t, fake.items)
}

func TestDynamo_MissingTableIsConfigError(t *testing.T) {
	fake := newFakeDDB()
	fake.err = &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "Requested resource not found"}

	_, _, err := NewDynamo(fake, "bonus-ball").GetJSON(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDynamo_TransientErrorIsNotConfigError(t *testing.T) {
	fake := newFakeDDB()
	fake.err = errors.New("connection reset")

	err := NewDynamo(fake, "bonus-ball").PutJSON(context.Background(), "k", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "connection reset")
}
